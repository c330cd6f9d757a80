package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
)

// EnrollmentRepository 选课仓储接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	Get(ctx context.Context, classID, studentID string) (*model.Enrollment, error)
	Exists(ctx context.Context, classID, studentID string) (bool, error)
	ListByClass(ctx context.Context, classID string) ([]*model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Enrollment, error)
	Delete(ctx context.Context, classID, studentID string) error
	DeleteByClass(ctx context.Context, classID string) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository 创建选课仓储
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Get(ctx context.Context, classID, studentID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, classID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

// ListByClass 班级名册，带学生用户信息
func (r *enrollmentRepository) ListByClass(ctx context.Context, classID string) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Preload("Student").
		Preload("Student.User").
		Order("created_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Class").
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) Delete(ctx context.Context, classID, studentID string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&model.Enrollment{}).Error
}

func (r *enrollmentRepository) DeleteByClass(ctx context.Context, classID string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Delete(&model.Enrollment{}).Error
}
