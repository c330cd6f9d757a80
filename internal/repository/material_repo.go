package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// MaterialRepository 课程资料仓储接口
type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) error
	GetByID(ctx context.Context, id string) (*model.Material, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.Material, error)
	ListForStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Material, error)
	Delete(ctx context.Context, id string) error
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository 创建资料仓储
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *model.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepository) GetByID(ctx context.Context, id string) (*model.Material, error) {
	var material model.Material
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Teacher.User").
		Where("material_id = ?", id).
		First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &material, nil
}

func (r *materialRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.Material, error) {
	var materials []*model.Material
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Preload("Class").
		Order("created_at DESC").
		Find(&materials).Error
	return materials, err
}

// ListForStudent 学生可见资料：已选班级挂靠的资料，加上授课教师标记公开的资料
func (r *materialRepository) ListForStudent(ctx context.Context, tc *tenant.Context, studentID string) ([]*model.Material, error) {
	var materials []*model.Material
	err := r.db.WithContext(ctx).Model(&model.Material{}).
		Scopes(tenant.ScopeOn(tc, "materials.school")).
		Where(`materials.class_id IN (
			SELECT class_id FROM enrollments WHERE student_id = ?
		) OR (materials.is_public = TRUE AND materials.teacher_id IN (
			SELECT classes.teacher_id FROM classes
			JOIN enrollments ON enrollments.class_id = classes.class_id
			WHERE enrollments.student_id = ?
		))`, studentID, studentID).
		Preload("Teacher").
		Preload("Teacher.User").
		Preload("Class").
		Order("materials.created_at DESC").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("material_id = ?", id).Delete(&model.Material{}).Error
}
