package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

// TuitionService 学费状态机与缴费台账
type TuitionService struct {
	repo         *repository.Repository
	cfg          *config.Config
	notification *NotificationService
	logger       *zap.Logger
}

// NewTuitionService 创建学费服务
func NewTuitionService(repo *repository.Repository, cfg *config.Config, notification *NotificationService, logger *zap.Logger) *TuitionService {
	return &TuitionService{repo: repo, cfg: cfg, notification: notification, logger: logger}
}

// ApplyTuitionTransition 对学生档案原地应用学费状态迁移。
// 修改 TuitionStatus 的唯一入口；派生字段在此统一维护：
//
//	paid    → 可修改密码，清空临时访问期限
//	partial → 不可修改密码，期限 = now + accessDays（零值用配置默认）
//	unpaid  → 不可修改密码，清空期限
func ApplyTuitionTransition(student *model.Student, status string, accessDays int, defaultDays int, now time.Time) error {
	switch status {
	case model.TuitionPaid:
		student.TuitionStatus = model.TuitionPaid
		student.CanChangePassword = true
		student.TempPasswordExpiry = nil
	case model.TuitionPartial:
		days := accessDays
		if days <= 0 {
			days = defaultDays
		}
		expiry := now.AddDate(0, 0, days)
		student.TuitionStatus = model.TuitionPartial
		student.CanChangePassword = false
		student.TempPasswordExpiry = &expiry
	case model.TuitionUnpaid:
		student.TuitionStatus = model.TuitionUnpaid
		student.CanChangePassword = false
		student.TempPasswordExpiry = nil
	default:
		return apperr.Validation("非法的学费状态: " + status)
	}
	return nil
}

// loadStudentUser 取学生用户并做租户鉴权
func (s *TuitionService) loadStudentUser(ctx context.Context, tc *tenant.Context, studentUserID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Role != model.RoleStudent || user.Student == nil {
		return nil, apperr.NotFound("学生不存在")
	}
	if err := tenant.Authorize(tc, user.SchoolOrEmpty()); err != nil {
		return nil, err
	}
	return user, nil
}

// writeLedger 在事务内落一条已核验的缴费流水。
// 所有写台账的入口（状态更新、缴费入账、建号时登记）共用此处的收据号查重。
func (s *TuitionService) writeLedger(ctx context.Context, tx *repository.Repository, payment *model.TuitionPayment) error {
	taken, err := tx.Tuition.ExistsByReceiptNumber(ctx, payment.ReceiptNumber)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("收据号已被使用: " + payment.ReceiptNumber)
	}
	if err := tx.Tuition.Create(ctx, payment); err != nil {
		return apperr.Integrity("缴费流水写入失败", err)
	}
	return nil
}

// UpdateStatus 管理员更新学生学费状态。
// 状态为 paid 且携带收据号时一并落台账（收据号重复则整体失败）。
func (s *TuitionService) UpdateStatus(ctx context.Context, tc *tenant.Context, studentUserID string, req *dto.UpdateTuitionRequest) (*dto.TuitionStateResponse, error) {
	user, err := s.loadStudentUser(ctx, tc, studentUserID)
	if err != nil {
		return nil, err
	}
	student := user.Student

	now := time.Now()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if req.TuitionStatus == model.TuitionPaid && req.ReceiptNumber != "" {
			payment := &model.TuitionPayment{
				ReceiptNumber: req.ReceiptNumber,
				StudentID:     student.StudentID,
				Status:        "verified",
				Semester:      currentSemester(now),
				VerifiedBy:    &tc.UserID,
				VerifiedAt:    &now,
				School:        user.SchoolOrEmpty(),
			}
			if err := s.writeLedger(ctx, tx, payment); err != nil {
				return err
			}
		}

		if err := ApplyTuitionTransition(student, req.TuitionStatus, req.AccessDays, s.cfg.Tuition.TempPasswordDays, now); err != nil {
			return err
		}
		return tx.User.UpdateStudent(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, user, req.TuitionStatus)

	s.logger.Info("学费状态已更新",
		zap.String("student_user_id", studentUserID),
		zap.String("status", req.TuitionStatus),
		zap.String("operator", tc.UserID))

	return s.stateResponse(ctx, student), nil
}

// RecordPayment 记录缴费并将学生迁移为 paid。
// 收据号全局唯一：冲突时不产生任何状态变更。
func (s *TuitionService) RecordPayment(ctx context.Context, tc *tenant.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	user, err := s.loadStudentUser(ctx, tc, req.StudentID)
	if err != nil {
		return nil, err
	}
	student := user.Student

	now := time.Now()
	semester := req.Semester
	if semester == "" {
		semester = currentSemester(now)
	}
	payment := &model.TuitionPayment{
		ReceiptNumber: req.ReceiptNumber,
		StudentID:     student.StudentID,
		Amount:        req.Amount,
		Status:        "verified",
		Semester:      semester,
		VerifiedBy:    &tc.UserID,
		VerifiedAt:    &now,
		School:        user.SchoolOrEmpty(),
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := s.writeLedger(ctx, tx, payment); err != nil {
			return err
		}
		if err := ApplyTuitionTransition(student, model.TuitionPaid, 0, s.cfg.Tuition.TempPasswordDays, now); err != nil {
			return err
		}
		return tx.User.UpdateStudent(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, user, model.TuitionPaid)

	s.logger.Info("缴费已入账",
		zap.String("receipt_number", req.ReceiptNumber),
		zap.String("student_id", student.StudentID))

	return paymentResponse(payment), nil
}

// ExtendAccess 延长 partial 学生的临时访问期限
func (s *TuitionService) ExtendAccess(ctx context.Context, tc *tenant.Context, studentUserID string, days int) (*dto.TuitionStateResponse, error) {
	user, err := s.loadStudentUser(ctx, tc, studentUserID)
	if err != nil {
		return nil, err
	}
	student := user.Student

	if student.TuitionStatus != model.TuitionPartial {
		return nil, apperr.StateConflict("仅部分缴费的学生可延长临时访问")
	}

	now := time.Now()
	// 从当前期限顺延；已过期则从现在起算
	base := now
	if student.TempPasswordExpiry != nil && student.TempPasswordExpiry.After(now) {
		base = *student.TempPasswordExpiry
	}
	expiry := base.AddDate(0, 0, days)
	student.TempPasswordExpiry = &expiry

	if err := s.repo.User.UpdateStudent(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("临时访问已延长",
		zap.String("student_user_id", studentUserID),
		zap.Int("days", days),
		zap.Time("new_expiry", expiry))

	return s.stateResponse(ctx, student), nil
}

// GetState 查询学生当前学费状态（附近期流水）
func (s *TuitionService) GetState(ctx context.Context, tc *tenant.Context, studentUserID string) (*dto.TuitionStateResponse, error) {
	user, err := s.loadStudentUser(ctx, tc, studentUserID)
	if err != nil {
		return nil, err
	}

	resp := s.stateResponse(ctx, user.Student)
	payments, err := s.repo.Tuition.ListByStudent(ctx, user.Student.StudentID, 10)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		resp.RecentPayments = append(resp.RecentPayments, *paymentResponse(p))
	}
	return resp, nil
}

// ExpiryReport 临时访问已过期的学生报表
func (s *TuitionService) ExpiryReport(ctx context.Context, tc *tenant.Context) ([]dto.ExpiredStudent, error) {
	users, err := s.repo.User.ListExpiredStudents(ctx, tc, time.Now())
	if err != nil {
		return nil, err
	}
	report := make([]dto.ExpiredStudent, 0, len(users))
	for _, u := range users {
		if u.Student == nil || u.Student.TempPasswordExpiry == nil {
			continue
		}
		report = append(report, dto.ExpiredStudent{
			StudentID: u.Student.StudentID,
			IDNumber:  u.IDNumber,
			FullName:  u.FullName(),
			ExpiredAt: u.Student.TempPasswordExpiry.Format(time.RFC3339),
		})
	}
	return report, nil
}

func (s *TuitionService) stateResponse(ctx context.Context, student *model.Student) *dto.TuitionStateResponse {
	resp := &dto.TuitionStateResponse{
		StudentID:         student.StudentID,
		TuitionStatus:     student.TuitionStatus,
		CanChangePassword: student.CanChangePassword,
		AccessExpired:     student.AccessExpired(time.Now()),
	}
	if student.TempPasswordExpiry != nil {
		v := student.TempPasswordExpiry.Format(time.RFC3339)
		resp.TempPasswordExpiry = &v
	}
	return resp
}

// notifyStatusChange 学费状态变更站内通知；通知失败不阻断主流程
func (s *TuitionService) notifyStatusChange(ctx context.Context, user *model.User, status string) {
	var message string
	switch status {
	case model.TuitionPaid:
		message = "您的学费已缴清，现在可以修改密码并正常使用所有功能。"
	case model.TuitionPartial:
		message = "您的学费为部分缴纳状态，临时访问有效期内请尽快缴清余款。"
	default:
		message = "您的学费状态已更新为未缴纳，请联系学校财务处。"
	}
	if err := s.notification.Push(ctx, user.UserID, "学费状态更新", message, "fa-money-bill"); err != nil {
		s.logger.Warn("学费通知发送失败", zap.String("user_id", user.UserID), zap.Error(err))
	}
}

func paymentResponse(p *model.TuitionPayment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:            p.PaymentID,
		ReceiptNumber: p.ReceiptNumber,
		StudentID:     p.StudentID,
		Amount:        p.Amount,
		Status:        p.Status,
		Semester:      p.Semester,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

// currentSemester 按月份推导学期标签，如 "2026-Fall"
func currentSemester(now time.Time) string {
	year := strconv.Itoa(now.Year())
	switch {
	case now.Month() >= time.September:
		return year + "-Fall"
	case now.Month() >= time.February && now.Month() <= time.June:
		return year + "-Spring"
	default:
		return year + "-Summer"
	}
}
