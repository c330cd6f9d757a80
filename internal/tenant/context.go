// Package tenant 是租户隔离的唯一裁决点。
//
// 原则：每个请求先解析出 Context（身份 + 租户归属），之后所有数据访问
// 要么叠加 Scope 生成的列表过滤，要么对单实体调用 Authorize。
// 两个执行点互不替代：列表过滤不能代替按 ID 直访的鉴权，反之亦然。
package tenant

import (
	"github.com/Danosky8082/EdTech/internal/model"
)

// Context 每请求的安全上下文。
// 由中间件在每个受保护请求上从数据库新鲜解析，不使用会话缓存的角色/学校，
// 避免角色或学校变更后旧会话继续越权。
type Context struct {
	UserID string
	Role   string
	// School 租户键；空串表示未归属任何学校
	School string
	// IsSuperAdmin 仅当 admin.role_level == superadmin 时为 true，
	// 是唯一豁免租户过滤的条件
	IsSuperAdmin bool
	// CanSeeAllSchoolUsers 校级管理员可见本校全部用户
	CanSeeAllSchoolUsers bool
	// ProfileID 角色档案主键（studentId / teacherId / adminId）
	ProfileID string
}

// Resolve 从新鲜加载的 User 行（含角色档案）推导安全上下文。
// 判定规则按序评估：
//  1. admin 且 roleLevel=superadmin → 跨租户
//  2. admin 其他级别 → 本校，可见全校用户
//  3. teacher → 本校
//  4. student → 本校
//  5. 其余（角色数据损坏）→ 按最小权限处理
func Resolve(u *model.User) *Context {
	ctx := &Context{
		UserID: u.UserID,
		Role:   u.Role,
	}

	switch {
	case u.Role == model.RoleAdmin && u.Admin != nil && u.Admin.RoleLevel == model.RoleLevelSuperAdmin:
		ctx.IsSuperAdmin = true
		ctx.School = "" // 超管不绑定学校
		ctx.CanSeeAllSchoolUsers = true
		ctx.ProfileID = u.Admin.AdminID

	case u.Role == model.RoleAdmin && u.Admin != nil:
		ctx.School = u.SchoolOrEmpty()
		ctx.CanSeeAllSchoolUsers = true
		ctx.ProfileID = u.Admin.AdminID

	case u.Role == model.RoleTeacher && u.Teacher != nil:
		ctx.School = u.SchoolOrEmpty()
		ctx.ProfileID = u.Teacher.TeacherID

	case u.Role == model.RoleStudent && u.Student != nil:
		ctx.School = u.SchoolOrEmpty()
		ctx.ProfileID = u.Student.StudentID

	default:
		// 角色未知或档案缺失：保留学校（若有）但不授予任何扩展可见性
		ctx.School = u.SchoolOrEmpty()
	}

	return ctx
}

// IsStudent 角色判定
func (c *Context) IsStudent() bool { return c.Role == model.RoleStudent }

// IsTeacher 角色判定
func (c *Context) IsTeacher() bool { return c.Role == model.RoleTeacher }

// IsAdmin 角色判定（含超管）
func (c *Context) IsAdmin() bool { return c.Role == model.RoleAdmin }
