package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// ExamRepository 考试仓储接口
type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	GetByID(ctx context.Context, id string) (*model.Exam, error)
	ListByClass(ctx context.Context, classID string) ([]*model.Exam, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.Exam, error)
	ListByStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Exam, error)
	Update(ctx context.Context, exam *model.Exam) error
	Delete(ctx context.Context, id string) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository 创建考试仓储
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) GetByID(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("exam_id = ?", id).
		First(&exam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) ListByClass(ctx context.Context, classID string) ([]*model.Exam, error) {
	var exams []*model.Exam
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("date DESC").
		Find(&exams).Error
	return exams, err
}

func (r *examRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.Exam, error) {
	var exams []*model.Exam
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Preload("Class").
		Order("date DESC").
		Find(&exams).Error
	return exams, err
}

// ListByStudent 学生可见考试 = 其已选班级下启用的考试
func (r *examRepository) ListByStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Exam, error) {
	var exams []*model.Exam
	err := r.db.WithContext(ctx).Model(&model.Exam{}).
		Scopes(tenant.ScopeOn(tc, "exams.school")).
		Joins("JOIN enrollments ON enrollments.class_id = exams.class_id").
		Where("enrollments.student_id = ?", studentID).
		Where("exams.is_active = ?", true).
		Preload("Class").
		Order("exams.date DESC").
		Find(&exams).Error
	return exams, err
}

func (r *examRepository) Update(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).Save(exam).Error
}

func (r *examRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("exam_id = ?", id).Delete(&model.Exam{}).Error
}
