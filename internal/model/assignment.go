package model

import "time"

// Assignment 作业表 — 对应 assignments
// TeacherID 与 Class.TeacherID 冗余一致；DueDate 之后提交关闭（提交时校验）
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ClassID      string    `gorm:"type:uuid;not null;index" json:"class_id"`
	TeacherID    string    `gorm:"type:uuid;not null"       json:"teacher_id"`
	Title        string    `gorm:"type:varchar(300);not null" json:"title"`
	Description  string    `gorm:"type:text"                json:"description"`
	DueDate      time.Time `gorm:"type:timestamptz;not null" json:"due_date"`
	Points       int       `gorm:"not null;default:100"     json:"points"`
	School       string    `gorm:"type:varchar(200);not null;index" json:"school"`
	BaseModel

	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// Closed 判定作业是否已过截止时间
func (a *Assignment) Closed(now time.Time) bool { return now.After(a.DueDate) }

// Submission 作业提交表 — 对应 submissions
// 唯一约束 (assignment_id, student_id)：重交为 upsert，覆盖内容并清空评分
type Submission struct {
	SubmissionID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	AssignmentID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_submissions_assignment_student" json:"assignment_id"`
	StudentID      string    `gorm:"type:uuid;not null;uniqueIndex:uq_submissions_assignment_student;index" json:"student_id"`
	SubmissionType string    `gorm:"type:varchar(10);not null;default:'file'" json:"submission_type"`
	Content        string    `gorm:"type:text;not null" json:"content"` // 文件键或文本/绘图载荷
	Grade          *float64  `json:"grade,omitempty"`
	Feedback       *string   `gorm:"type:text" json:"feedback,omitempty"`
	School         string    `gorm:"type:varchar(200);not null" json:"school"`
	SubmittedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"submitted_at"`

	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
	Student    *Student    `gorm:"foreignKey:StudentID;references:StudentID"       json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }
