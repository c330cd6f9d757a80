package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
)

// AttemptRepository 考试答卷仓储接口
type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.ExamAttempt) error
	GetByID(ctx context.Context, id string) (*model.ExamAttempt, error)
	GetInProgress(ctx context.Context, examID, studentID string) (*model.ExamAttempt, error)
	CountByExamStudent(ctx context.Context, examID, studentID string) (int64, error)
	ListByExam(ctx context.Context, examID string, statuses ...string) ([]*model.ExamAttempt, error)
	ListByStudent(ctx context.Context, studentID string, statuses ...string) ([]*model.ExamAttempt, error)
	Update(ctx context.Context, attempt *model.ExamAttempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository 创建答卷仓储
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.ExamAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) GetByID(ctx context.Context, id string) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.db.WithContext(ctx).
		Preload("Exam").
		Preload("Student").
		Preload("Student.User").
		Where("attempt_id = ?", id).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// GetInProgress 取进行中的答卷（部分唯一索引保证至多一份）
func (r *attemptRepository) GetInProgress(ctx context.Context, examID, studentID string) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ? AND status = ?", examID, studentID, model.AttemptInProgress).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) CountByExamStudent(ctx context.Context, examID, studentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ExamAttempt{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) ListByExam(ctx context.Context, examID string, statuses ...string) ([]*model.ExamAttempt, error) {
	var attempts []*model.ExamAttempt
	query := r.db.WithContext(ctx).Where("exam_id = ?", examID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.
		Preload("Student").
		Preload("Student.User").
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) ListByStudent(ctx context.Context, studentID string, statuses ...string) ([]*model.ExamAttempt, error) {
	var attempts []*model.ExamAttempt
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.
		Preload("Exam").
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) Update(ctx context.Context, attempt *model.ExamAttempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}
