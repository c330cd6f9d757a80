package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	CreateTeacher(ctx context.Context, teacher *model.Teacher) error
	CreateStudent(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*model.User, error)
	GetByTeacherID(ctx context.Context, teacherID string) (*model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	List(ctx context.Context, tc *tenant.Context, req *dto.UserListRequest) ([]*model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	UpdateStudent(ctx context.Context, student *model.Student) error
	UpdateTeacher(ctx context.Context, teacher *model.Teacher) error
	Delete(ctx context.Context, id string) error
	ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error)
	CountByRole(ctx context.Context, tc *tenant.Context, role string) (int64, error)
	ListSchools(ctx context.Context) ([]dto.SchoolSummary, error)
	ListExpiredStudents(ctx context.Context, tc *tenant.Context, now time.Time) ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *userRepository) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *userRepository) CreateStudent(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetByID 按主键取用户，预加载角色档案（身份解析依赖完整档案）
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Preload("Teacher").
		Preload("Student").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDNumber(ctx context.Context, idNumber string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Preload("Teacher").
		Preload("Student").
		Where("id_number = ?", idNumber).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByTeacherID 按教师档案 ID 反查用户
func (r *userRepository) GetByTeacherID(ctx context.Context, teacherID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN teachers ON teachers.user_id = users.user_id").
		Where("teachers.teacher_id = ?", teacherID).
		Preload("Teacher").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByStudentID 按学生档案 ID 反查用户
func (r *userRepository) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN students ON students.user_id = users.user_id").
		Where("students.student_id = ?", studentID).
		Preload("Student").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, tc *tenant.Context, req *dto.UserListRequest) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{}).Scopes(tenant.Scope(tc))

	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.School != "" && tc.IsSuperAdmin {
		query = query.Where("school = ?", req.School)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	if req.Keyword != "" {
		kw := "%" + req.Keyword + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR id_number ILIKE ?", kw, kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Admin").
		Preload("Teacher").
		Preload("Student").
		Order("created_at DESC").
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateStudent(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *userRepository) UpdateTeacher(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&model.User{}).Error
}

func (r *userRepository) ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id_number = ?", idNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) CountByRole(ctx context.Context, tc *tenant.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(tenant.Scope(tc)).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

// ListSchools 全局学校汇总，仅超级管理员使用
func (r *userRepository) ListSchools(ctx context.Context) ([]dto.SchoolSummary, error) {
	var rows []dto.SchoolSummary
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("school, COUNT(*) AS user_count").
		Where("school IS NOT NULL AND school <> ''").
		Group("school").
		Order("school").
		Scan(&rows).Error
	return rows, err
}

// ListExpiredStudents 临时访问已过期的 partial 学生
func (r *userRepository) ListExpiredStudents(ctx context.Context, tc *tenant.Context, now time.Time) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(tenant.Scope(tc)).
		Joins("JOIN students ON students.user_id = users.user_id").
		Where("students.tuition_status = ?", model.TuitionPartial).
		Where("students.temp_password_expiry IS NOT NULL AND students.temp_password_expiry < ?", now).
		Preload("Student").
		Find(&users).Error
	return users, err
}
