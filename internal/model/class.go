package model

import "time"

// Class 班级表 — 对应 classes
// school 列在创建时从授课教师的 User 行复制，此后不再独立变更
type Class struct {
	ClassID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name      string `gorm:"type:varchar(200);not null" json:"name"`
	Grade     string `gorm:"type:varchar(20)"  json:"grade"`
	Section   string `gorm:"type:varchar(20)"  json:"section"`
	TeacherID string `gorm:"type:uuid;not null;index" json:"teacher_id"`
	School    string `gorm:"type:varchar(200);not null;index" json:"school"`
	BaseModel

	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// Enrollment 选课表 — 对应 enrollments
// 唯一约束 (class_id, student_id)；仅由管理员操作创建，不存在隐式选课
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	ClassID      string    `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_class_student" json:"class_id"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_class_student;index" json:"student_id"`
	School       string    `gorm:"type:varchar(200);not null" json:"school"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"       json:"class,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID"   json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// StudentNote 学生课堂笔记 — 对应 student_notes
type StudentNote struct {
	NoteID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"note_id"`
	StudentID string  `gorm:"type:uuid;not null;index:idx_student_notes_student" json:"student_id"`
	ClassID   string  `gorm:"type:uuid;not null;index:idx_student_notes_student" json:"class_id"`
	Content   JSONMap `gorm:"type:jsonb;not null" json:"content"`
	School    string  `gorm:"type:varchar(200);not null" json:"school"`
	BaseModel
}

// TableName 指定表名
func (StudentNote) TableName() string { return "student_notes" }
