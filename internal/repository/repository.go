package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 仓储层聚合，持有所有实体仓储
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Class        ClassRepository
	Enrollment   EnrollmentRepository
	Note         NoteRepository
	Assignment   AssignmentRepository
	Submission   SubmissionRepository
	Exam         ExamRepository
	Attempt      AttemptRepository
	Material     MaterialRepository
	Tuition      TuitionRepository
	Notification NotificationRepository
}

// NewRepository 创建仓储层
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepository(db),
		Class:        NewClassRepository(db),
		Enrollment:   NewEnrollmentRepository(db),
		Note:         NewNoteRepository(db),
		Assignment:   NewAssignmentRepository(db),
		Submission:   NewSubmissionRepository(db),
		Exam:         NewExamRepository(db),
		Attempt:      NewAttemptRepository(db),
		Material:     NewMaterialRepository(db),
		Tuition:      NewTuitionRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// Transaction 在单个事务内执行 fn，fn 返回错误则回滚。
// 未绑定数据库连接时（内存仓储）直接执行 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
