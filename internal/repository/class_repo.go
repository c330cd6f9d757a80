package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// ClassRepository 班级仓储接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	List(ctx context.Context, tc *tenant.Context, req *dto.ClassListRequest) ([]*model.Class, int64, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.Class, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, tc *tenant.Context) (int64, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository 创建班级仓储
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Teacher.User").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) List(ctx context.Context, tc *tenant.Context, req *dto.ClassListRequest) ([]*model.Class, int64, error) {
	var classes []*model.Class
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Class{}).Scopes(tenant.Scope(tc))
	if req.TeacherID != "" {
		query = query.Where("teacher_id = ?", req.TeacherID)
	}
	if req.Keyword != "" {
		query = query.Where("name ILIKE ?", "%"+req.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Teacher").
		Preload("Teacher.User").
		Order("created_at DESC").
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Find(&classes).Error
	if err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.Class, error) {
	var classes []*model.Class
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

// ListByStudent 学生已选的班级
func (r *classRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Class, error) {
	var classes []*model.Class
	err := r.db.WithContext(ctx).Model(&model.Class{}).
		Joins("JOIN enrollments ON enrollments.class_id = classes.class_id").
		Where("enrollments.student_id = ?", studentID).
		Preload("Teacher").
		Preload("Teacher.User").
		Order("classes.created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepository) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("class_id = ?", id).Delete(&model.Class{}).Error
}

func (r *classRepository) Count(ctx context.Context, tc *tenant.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Class{}).
		Scopes(tenant.Scope(tc)).
		Count(&count).Error
	return count, err
}
