package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── 角色常量 ──

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ── 管理员级别 ──
// RoleLevelSuperAdmin 是唯一允许跨租户访问的级别

const (
	RoleLevelSuperAdmin    = "superadmin"
	RoleLevelPrincipal     = "principal"
	RoleLevelHeadTeacher   = "headteacher"
	RoleLevelAdministrator = "administrator"
)

// ── 学费状态 ──

const (
	TuitionUnpaid  = "unpaid"
	TuitionPartial = "partial"
	TuitionPaid    = "paid"
)

// ── 考试答卷状态机: in_progress → submitted → graded → published ──

const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
	AttemptGraded     = "graded"
	AttemptPublished  = "published"
)

// ── 提交类型 ──

const (
	SubmissionFile    = "file"
	SubmissionText    = "text"
	SubmissionDrawing = "drawing"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// JSONMap 对应 PostgreSQL JSONB 对象，实现 GORM Scanner/Valuer 接口。
type JSONMap map[string]interface{}

// Scan 将数据库返回的 JSONB 文本解析为 map。
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("JSONMap.Scan: unsupported type %T", src)
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}

// Value 将 map 序列化为 JSONB 文本。
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
