package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── 题目类型 ──

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
)

// Question 单道试题（Exam.Questions JSONB 中的元素）
type Question struct {
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Marks         float64  `json:"marks"`
}

// QuestionList 对应 PostgreSQL JSONB 数组，实现 GORM Scanner/Valuer 接口。
type QuestionList []Question

// Scan 将 JSONB 文本解析为题目序列。
func (q *QuestionList) Scan(src interface{}) error {
	if src == nil {
		*q = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("QuestionList.Scan: unsupported type %T", src)
	}
	if len(b) == 0 {
		*q = QuestionList{}
		return nil
	}
	return json.Unmarshal(b, q)
}

// Value 将题目序列序列化为 JSONB 文本。
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// TotalMarks 求题目分值之和
func (q QuestionList) TotalMarks() float64 {
	var total float64
	for _, item := range q {
		total += item.Marks
	}
	return total
}

// AnswerList 学生作答序列（与题目按下标对齐），同样存为 JSONB。
type AnswerList []string

// Scan 解析 JSONB 文本
func (a *AnswerList) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("AnswerList.Scan: unsupported type %T", src)
	}
	if len(b) == 0 {
		*a = AnswerList{}
		return nil
	}
	return json.Unmarshal(b, a)
}

// Value 序列化为 JSONB 文本
func (a AnswerList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Exam 考试表 — 对应 exams
type Exam struct {
	ExamID      string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_id"`
	ClassID     string       `gorm:"type:uuid;not null;index" json:"class_id"`
	TeacherID   string       `gorm:"type:uuid;not null"       json:"teacher_id"`
	Title       string       `gorm:"type:varchar(300);not null" json:"title"`
	Questions   QuestionList `gorm:"type:jsonb;not null"      json:"questions"`
	Duration    int          `gorm:"not null"                 json:"duration"` // 分钟
	Date        time.Time    `gorm:"type:timestamptz;not null" json:"date"`
	MaxAttempts int          `gorm:"not null;default:1"       json:"max_attempts"`
	ShowResults bool         `gorm:"not null;default:true"    json:"show_results"`
	TotalMarks  float64      `gorm:"not null;default:0"       json:"total_marks"`
	IsActive    bool         `gorm:"not null;default:true"    json:"is_active"`
	School      string       `gorm:"type:varchar(200);not null;index" json:"school"`
	BaseModel

	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (Exam) TableName() string { return "exams" }

// EndTime 考试窗口结束时间 = date + duration
func (e *Exam) EndTime() time.Time {
	return e.Date.Add(time.Duration(e.Duration) * time.Minute)
}

// WindowOpen 判定当前时刻是否处于 [date, date+duration] 窗口内
func (e *Exam) WindowOpen(now time.Time) bool {
	return !now.Before(e.Date) && !now.After(e.EndTime())
}

// ExamAttempt 考试答卷表 — 对应 exam_attempts
// 状态机: in_progress → submitted → graded → published（published 为终态）
// 部分唯一索引保证同一 (exam, student) 至多一份 in_progress 答卷
type ExamAttempt struct {
	AttemptID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attempt_id"`
	ExamID          string     `gorm:"type:uuid;not null;index" json:"exam_id"`
	StudentID       string     `gorm:"type:uuid;not null;index" json:"student_id"`
	Status          string     `gorm:"type:varchar(15);not null;default:'in_progress'" json:"status"`
	Answers         AnswerList `gorm:"type:jsonb;not null" json:"answers"`
	Score           *float64   `json:"score,omitempty"`
	TeacherFeedback *string    `gorm:"type:text" json:"teacher_feedback,omitempty"`
	TimeSpent       int        `gorm:"not null;default:0" json:"time_spent"`
	StartedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"started_at"`
	SubmittedAt     *time.Time `gorm:"type:timestamptz" json:"submitted_at,omitempty"`
	GradedAt        *time.Time `gorm:"type:timestamptz" json:"graded_at,omitempty"`
	GradedBy        *string    `gorm:"type:uuid" json:"graded_by,omitempty"`
	School          string     `gorm:"type:varchar(200);not null" json:"school"`

	Exam    *Exam    `gorm:"foreignKey:ExamID;references:ExamID"       json:"exam,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (ExamAttempt) TableName() string { return "exam_attempts" }

// Terminal 判定答卷是否处于终态
func (a *ExamAttempt) Terminal() bool { return a.Status == AttemptPublished }
