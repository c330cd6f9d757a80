package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// AssignmentRepository 作业仓储接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByClass(ctx context.Context, classID string) ([]*model.Assignment, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.Assignment, error)
	ListByStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository 创建作业仓储
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByClass(ctx context.Context, classID string) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("due_date DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Preload("Class").
		Order("due_date DESC").
		Find(&assignments).Error
	return assignments, err
}

// ListByStudent 学生可见作业 = 其已选班级下的作业，叠加租户过滤
func (r *assignmentRepository) ListByStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	err := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Scopes(tenant.ScopeOn(tc, "assignments.school")).
		Joins("JOIN enrollments ON enrollments.class_id = assignments.class_id").
		Where("enrollments.student_id = ?", studentID).
		Preload("Class").
		Order("assignments.due_date DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("assignment_id = ?", id).Delete(&model.Assignment{}).Error
}
