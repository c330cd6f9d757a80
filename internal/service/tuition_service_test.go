package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

func newTuitionService(t *testing.T) (*TuitionService, *mockRepos) {
	t.Helper()
	repo, mocks := newMockRepos()
	notification := NewNotificationService(repo, zap.NewNop())
	return NewTuitionService(repo, testConfig(), notification, zap.NewNop()), mocks
}

// ── 状态迁移 ──

func TestApplyTuitionTransition_Paid(t *testing.T) {
	now := time.Now()
	expiry := now.AddDate(0, 0, 10)
	student := &model.Student{
		TuitionStatus:      model.TuitionPartial,
		CanChangePassword:  false,
		TempPasswordExpiry: &expiry,
	}

	if err := ApplyTuitionTransition(student, model.TuitionPaid, 0, 30, now); err != nil {
		t.Fatalf("迁移到 paid 失败: %v", err)
	}
	if student.TuitionStatus != model.TuitionPaid {
		t.Errorf("期望状态 paid，实际=%s", student.TuitionStatus)
	}
	if !student.CanChangePassword {
		t.Error("paid 状态应允许修改密码")
	}
	if student.TempPasswordExpiry != nil {
		t.Error("paid 状态应清空临时访问期限")
	}
}

func TestApplyTuitionTransition_Partial(t *testing.T) {
	now := time.Now()
	student := &model.Student{TuitionStatus: model.TuitionUnpaid}

	if err := ApplyTuitionTransition(student, model.TuitionPartial, 15, 30, now); err != nil {
		t.Fatalf("迁移到 partial 失败: %v", err)
	}
	if student.CanChangePassword {
		t.Error("partial 状态不应允许修改密码")
	}
	if student.TempPasswordExpiry == nil {
		t.Fatal("partial 状态应设置期限")
	}
	want := now.AddDate(0, 0, 15)
	if !student.TempPasswordExpiry.Equal(want) {
		t.Errorf("期望期限=%v，实际=%v", want, *student.TempPasswordExpiry)
	}
}

func TestApplyTuitionTransition_PartialDefaultDays(t *testing.T) {
	now := time.Now()
	student := &model.Student{TuitionStatus: model.TuitionUnpaid}

	// accessDays 未指定时落到配置默认值
	if err := ApplyTuitionTransition(student, model.TuitionPartial, 0, 30, now); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	want := now.AddDate(0, 0, 30)
	if !student.TempPasswordExpiry.Equal(want) {
		t.Errorf("期望默认 30 天期限=%v，实际=%v", want, *student.TempPasswordExpiry)
	}
}

func TestApplyTuitionTransition_Unpaid(t *testing.T) {
	now := time.Now()
	expiry := now.AddDate(0, 0, 5)
	student := &model.Student{
		TuitionStatus:      model.TuitionPartial,
		TempPasswordExpiry: &expiry,
	}

	if err := ApplyTuitionTransition(student, model.TuitionUnpaid, 0, 30, now); err != nil {
		t.Fatalf("迁移到 unpaid 失败: %v", err)
	}
	if student.CanChangePassword {
		t.Error("unpaid 状态不应允许修改密码")
	}
	if student.TempPasswordExpiry != nil {
		t.Error("unpaid 状态应清空期限")
	}
}

func TestApplyTuitionTransition_InvalidStatus(t *testing.T) {
	student := &model.Student{TuitionStatus: model.TuitionUnpaid}
	err := ApplyTuitionTransition(student, "refunded", 0, 30, time.Now())
	if !apperr.IsValidation(err) {
		t.Fatalf("非法状态应返回参数错误，实际=%v", err)
	}
	if student.TuitionStatus != model.TuitionUnpaid {
		t.Error("非法迁移不应改变原状态")
	}
}

// ── 缴费入账 ──

func TestRecordPayment_MovesStudentToPaid(t *testing.T) {
	svc, mocks := newTuitionService(t)
	ctx := context.Background()

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	studentUser := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionUnpaid, nil)

	resp, err := svc.RecordPayment(ctx, tenantFor(admin), &dto.RecordPaymentRequest{
		StudentID:     studentUser.UserID,
		ReceiptNumber: "RCP-1001",
		Amount:        5000,
	})
	if err != nil {
		t.Fatalf("缴费入账失败: %v", err)
	}
	if resp.ReceiptNumber != "RCP-1001" {
		t.Errorf("期望收据号 RCP-1001，实际=%s", resp.ReceiptNumber)
	}
	if studentUser.Student.TuitionStatus != model.TuitionPaid {
		t.Errorf("入账后学生应为 paid，实际=%s", studentUser.Student.TuitionStatus)
	}
	if !studentUser.Student.CanChangePassword {
		t.Error("paid 学生应可修改密码")
	}
	// 学生应收到状态变更通知
	if got := mocks.notification.forUser(studentUser.UserID); len(got) != 1 {
		t.Errorf("期望 1 条通知，实际=%d", len(got))
	}
}

func TestRecordPayment_DuplicateReceipt(t *testing.T) {
	svc, mocks := newTuitionService(t)
	ctx := context.Background()

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	first := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionUnpaid, nil)
	second := seedStudent(mocks.user, "Greenwood", "S-002", "hash", model.TuitionUnpaid, nil)

	if _, err := svc.RecordPayment(ctx, tenantFor(admin), &dto.RecordPaymentRequest{
		StudentID:     first.UserID,
		ReceiptNumber: "RCP-1001",
		Amount:        5000,
	}); err != nil {
		t.Fatalf("首次入账失败: %v", err)
	}

	_, err := svc.RecordPayment(ctx, tenantFor(admin), &dto.RecordPaymentRequest{
		StudentID:     second.UserID,
		ReceiptNumber: "RCP-1001",
		Amount:        5000,
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("重复收据号应返回参数错误，实际=%v", err)
	}
	// 冲突不应产生任何状态变更
	if second.Student.TuitionStatus != model.TuitionUnpaid {
		t.Errorf("冲突后学生状态不应改变，实际=%s", second.Student.TuitionStatus)
	}
}

func TestRecordPayment_CrossSchoolDenied(t *testing.T) {
	svc, mocks := newTuitionService(t)

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	other := seedStudent(mocks.user, "Riverview", "S-009", "hash", model.TuitionUnpaid, nil)

	_, err := svc.RecordPayment(context.Background(), tenantFor(admin), &dto.RecordPaymentRequest{
		StudentID:     other.UserID,
		ReceiptNumber: "RCP-2001",
		Amount:        5000,
	})
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("跨校入账应被拒绝，实际=%v", err)
	}
}

// ── 状态更新 ──

func TestUpdateStatus_PaidWithReceiptWritesLedger(t *testing.T) {
	svc, mocks := newTuitionService(t)
	ctx := context.Background()

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	studentUser := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPartial, nil)

	resp, err := svc.UpdateStatus(ctx, tenantFor(admin), studentUser.UserID, &dto.UpdateTuitionRequest{
		TuitionStatus: model.TuitionPaid,
		ReceiptNumber: "RCP-3001",
	})
	if err != nil {
		t.Fatalf("状态更新失败: %v", err)
	}
	if resp.TuitionStatus != model.TuitionPaid {
		t.Errorf("期望状态 paid，实际=%s", resp.TuitionStatus)
	}
	if exists, _ := mocks.tuition.ExistsByReceiptNumber(ctx, "RCP-3001"); !exists {
		t.Error("paid + 收据号应写入缴费台账")
	}
}

func TestUpdateStatus_SuperAdminCrossSchool(t *testing.T) {
	svc, mocks := newTuitionService(t)

	super := seedAdmin(mocks.user, "", "SA-001", model.RoleLevelSuperAdmin)
	studentUser := seedStudent(mocks.user, "Riverview", "S-001", "hash", model.TuitionUnpaid, nil)

	resp, err := svc.UpdateStatus(context.Background(), tenantFor(super), studentUser.UserID, &dto.UpdateTuitionRequest{
		TuitionStatus: model.TuitionPartial,
		AccessDays:    7,
	})
	if err != nil {
		t.Fatalf("超管跨校更新应成功: %v", err)
	}
	if resp.TempPasswordExpiry == nil {
		t.Error("partial 状态应返回期限")
	}
}

// ── 延长临时访问 ──

func TestExtendAccess_Partial(t *testing.T) {
	svc, mocks := newTuitionService(t)

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	expiry := time.Now().AddDate(0, 0, 3)
	studentUser := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPartial, &expiry)

	if _, err := svc.ExtendAccess(context.Background(), tenantFor(admin), studentUser.UserID, 7); err != nil {
		t.Fatalf("延长访问失败: %v", err)
	}
	want := expiry.AddDate(0, 0, 7)
	if !studentUser.Student.TempPasswordExpiry.Equal(want) {
		t.Errorf("期望从原期限顺延至 %v，实际=%v", want, *studentUser.Student.TempPasswordExpiry)
	}
}

func TestExtendAccess_ExpiredRestartsFromNow(t *testing.T) {
	svc, mocks := newTuitionService(t)

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	expired := time.Now().AddDate(0, 0, -5)
	studentUser := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPartial, &expired)

	before := time.Now()
	if _, err := svc.ExtendAccess(context.Background(), tenantFor(admin), studentUser.UserID, 7); err != nil {
		t.Fatalf("延长访问失败: %v", err)
	}
	got := *studentUser.Student.TempPasswordExpiry
	if got.Before(before.AddDate(0, 0, 7)) {
		t.Errorf("已过期学生应从当前时刻起算，实际=%v", got)
	}
}

func TestExtendAccess_NotPartial(t *testing.T) {
	svc, mocks := newTuitionService(t)

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	studentUser := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPaid, nil)

	_, err := svc.ExtendAccess(context.Background(), tenantFor(admin), studentUser.UserID, 7)
	if !apperr.IsStateConflict(err) {
		t.Fatalf("非 partial 学生延长访问应返回状态冲突，实际=%v", err)
	}
}

// ── 过期报表 ──

func TestExpiryReport_OnlyExpiredPartial(t *testing.T) {
	svc, mocks := newTuitionService(t)

	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)
	expired := time.Now().AddDate(0, 0, -1)
	active := time.Now().AddDate(0, 0, 10)
	expiredUser := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPartial, &expired)
	seedStudent(mocks.user, "Greenwood", "S-002", "hash", model.TuitionPartial, &active)
	seedStudent(mocks.user, "Greenwood", "S-003", "hash", model.TuitionPaid, nil)
	otherSchool := time.Now().AddDate(0, 0, -2)
	seedStudent(mocks.user, "Riverview", "S-004", "hash", model.TuitionPartial, &otherSchool)

	report, err := svc.ExpiryReport(context.Background(), tenantFor(admin))
	if err != nil {
		t.Fatalf("报表查询失败: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("期望 1 名过期学生，实际=%d", len(report))
	}
	if report[0].StudentID != expiredUser.Student.StudentID {
		t.Errorf("期望学生=%s，实际=%s", expiredUser.Student.StudentID, report[0].StudentID)
	}
}

// ── 学期标签 ──

func TestCurrentSemester(t *testing.T) {
	cases := []struct {
		month time.Month
		want  string
	}{
		{time.October, "2026-Fall"},
		{time.March, "2026-Spring"},
		{time.July, "2026-Summer"},
		{time.January, "2026-Summer"},
	}
	for _, c := range cases {
		now := time.Date(2026, c.month, 15, 0, 0, 0, 0, time.UTC)
		if got := currentSemester(now); got != c.want {
			t.Errorf("月份 %v：期望 %s，实际=%s", c.month, c.want, got)
		}
	}
}
