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

func newSubmissionService(t *testing.T) (*SubmissionService, *mockRepos) {
	t.Helper()
	repo, mocks := newMockRepos()
	notification := NewNotificationService(repo, zap.NewNop())
	return NewSubmissionService(repo, nil, notification, zap.NewNop()), mocks
}

// seedAssignmentClass 造一个班级 + 选课学生 + 未截止的作业
func seedAssignmentClass(t *testing.T, mocks *mockRepos, school string) (teacher, student *model.User, assignment *model.Assignment) {
	t.Helper()
	ctx := context.Background()
	teacher = seedTeacher(mocks.user, school, "T-"+nextID(""))
	student = seedStudent(mocks.user, school, "S-"+nextID(""), "hash", model.TuitionPaid, nil)

	class := &model.Class{Name: "十年级语文", TeacherID: teacher.Teacher.TeacherID, School: school}
	if err := mocks.class.Create(ctx, class); err != nil {
		t.Fatalf("造班级失败: %v", err)
	}
	if err := mocks.enroll.Create(ctx, &model.Enrollment{
		ClassID:   class.ClassID,
		StudentID: student.Student.StudentID,
		School:    school,
	}); err != nil {
		t.Fatalf("造选课失败: %v", err)
	}

	assignment = &model.Assignment{
		ClassID:   class.ClassID,
		TeacherID: teacher.Teacher.TeacherID,
		Title:     "读后感",
		DueDate:   time.Now().Add(24 * time.Hour),
		Points:    100,
		School:    school,
	}
	if err := mocks.assignment.Create(ctx, assignment); err != nil {
		t.Fatalf("造作业失败: %v", err)
	}
	return teacher, student, assignment
}

// ── 提交 ──

func TestSubmitText(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")

	resp, err := svc.SubmitText(context.Background(), tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "这本书讲述了……",
	})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	if resp.Content != "这本书讲述了……" {
		t.Errorf("提交内容不符，实际=%s", resp.Content)
	}
	if resp.Grade != nil {
		t.Error("新提交不应带评分")
	}
}

func TestSubmitText_AfterDueDate(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	assignment.DueDate = time.Now().Add(-1 * time.Hour)

	_, err := svc.SubmitText(context.Background(), tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "迟到的作业",
	})
	if !apperr.IsStateConflict(err) {
		t.Fatalf("截止后提交应返回状态冲突，实际=%v", err)
	}
}

func TestSubmitText_NotEnrolled(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, _, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	outsider := seedStudent(mocks.user, "Greenwood", "S-800", "hash", model.TuitionPaid, nil)

	_, err := svc.SubmitText(context.Background(), tenantFor(outsider), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "蹭课作业",
	})
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("未选课学生提交应被拒绝，实际=%v", err)
	}
}

func TestSubmitText_CrossSchoolDenied(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, _, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	other := seedStudent(mocks.user, "Riverview", "S-801", "hash", model.TuitionPaid, nil)

	_, err := svc.SubmitText(context.Background(), tenantFor(other), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "跨校作业",
	})
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("跨校提交应被拒绝，实际=%v", err)
	}
}

func TestSubmitText_ResubmitClearsGrade(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	teacher, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	ctx := context.Background()

	first, err := svc.SubmitText(ctx, tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "第一版",
	})
	if err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	if _, err := svc.Grade(ctx, tenantFor(teacher), first.ID, &dto.GradeSubmissionRequest{
		Grade:    80,
		Feedback: "不错",
	}); err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	// 重交覆盖内容并清空评分与反馈
	second, err := svc.SubmitText(ctx, tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "第二版",
	})
	if err != nil {
		t.Fatalf("重交失败: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("重交应复用同一条提交记录：%s vs %s", first.ID, second.ID)
	}
	if second.Content != "第二版" {
		t.Errorf("重交应覆盖内容，实际=%s", second.Content)
	}
	if second.Grade != nil || second.Feedback != nil {
		t.Error("重交应清空评分与反馈")
	}
}

// ── 评分 ──

func TestGrade_CappedAtPoints(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	teacher, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	ctx := context.Background()

	resp, err := svc.SubmitText(ctx, tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "作业内容",
	})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	if _, err := svc.Grade(ctx, tenantFor(teacher), resp.ID, &dto.GradeSubmissionRequest{Grade: 120}); !apperr.IsValidation(err) {
		t.Fatalf("超过满分的评分应返回参数错误，实际=%v", err)
	}

	graded, err := svc.Grade(ctx, tenantFor(teacher), resp.ID, &dto.GradeSubmissionRequest{
		Grade:    95,
		Feedback: "很好",
	})
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}
	if graded.Grade == nil || *graded.Grade != 95 {
		t.Errorf("期望 95 分，实际=%v", graded.Grade)
	}
}

func TestGrade_OtherTeacherDenied(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	other := seedTeacher(mocks.user, "Greenwood", "T-800")
	ctx := context.Background()

	resp, err := svc.SubmitText(ctx, tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "作业内容",
	})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	if _, err := svc.Grade(ctx, tenantFor(other), resp.ID, &dto.GradeSubmissionRequest{Grade: 60}); !apperr.IsAccessDenied(err) {
		t.Fatalf("他人作业的提交不可评阅，实际=%v", err)
	}
}

// ── 查看 ──

func TestListByAssignment_StudentDenied(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")

	_, err := svc.ListByAssignment(context.Background(), tenantFor(student), assignment.AssignmentID)
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("学生不应能查看作业的全部提交，实际=%v", err)
	}
}

func TestListByAssignment_OwnerTeacher(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	teacher, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	ctx := context.Background()

	if _, err := svc.SubmitText(ctx, tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionText,
		Content:        "作业内容",
	}); err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	list, err := svc.ListByAssignment(ctx, tenantFor(teacher), assignment.AssignmentID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望 1 条提交，实际=%d", len(list))
	}
}

func TestListMine_OnlyOwnSubmissions(t *testing.T) {
	svc, mocks := newSubmissionService(t)
	_, student, assignment := seedAssignmentClass(t, mocks, "Greenwood")
	ctx := context.Background()

	if _, err := svc.SubmitText(ctx, tenantFor(student), assignment.AssignmentID, &dto.SubmitTextRequest{
		SubmissionType: model.SubmissionDrawing,
		Content:        `{"strokes":[]}`,
	}); err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	list, err := svc.ListMine(ctx, tenantFor(student))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].SubmissionType != model.SubmissionDrawing {
		t.Errorf("期望 1 条绘图提交，实际=%v", list)
	}
}
