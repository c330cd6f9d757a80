package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// TuitionRepository 学费流水仓储接口
type TuitionRepository interface {
	Create(ctx context.Context, payment *model.TuitionPayment) error
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*model.TuitionPayment, error)
	ExistsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]*model.TuitionPayment, error)
	List(ctx context.Context, tc *tenant.Context) ([]*model.TuitionPayment, error)
	CountStudentsByStatus(ctx context.Context, tc *tenant.Context, status string) (int64, error)
}

type tuitionRepository struct {
	db *gorm.DB
}

// NewTuitionRepository 创建学费仓储
func NewTuitionRepository(db *gorm.DB) TuitionRepository {
	return &tuitionRepository{db: db}
}

func (r *tuitionRepository) Create(ctx context.Context, payment *model.TuitionPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *tuitionRepository) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*model.TuitionPayment, error) {
	var payment model.TuitionPayment
	err := r.db.WithContext(ctx).
		Where("receipt_number = ?", receiptNumber).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *tuitionRepository) ExistsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TuitionPayment{}).
		Where("receipt_number = ?", receiptNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *tuitionRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]*model.TuitionPayment, error) {
	var payments []*model.TuitionPayment
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&payments).Error
	return payments, err
}

func (r *tuitionRepository) List(ctx context.Context, tc *tenant.Context) ([]*model.TuitionPayment, error) {
	var payments []*model.TuitionPayment
	err := r.db.WithContext(ctx).Model(&model.TuitionPayment{}).
		Scopes(tenant.Scope(tc)).
		Preload("Student").
		Preload("Student.User").
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// CountStudentsByStatus 按学费状态统计学生数（叠加租户过滤）
func (r *tuitionRepository) CountStudentsByStatus(ctx context.Context, tc *tenant.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("JOIN users ON users.user_id = students.user_id").
		Scopes(tenant.ScopeOn(tc, "users.school")).
		Where("students.tuition_status = ?", status).
		Count(&count).Error
	return count, err
}
