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

func newAssignmentService(t *testing.T) (*AssignmentService, *mockRepos) {
	t.Helper()
	repo, mocks := newMockRepos()
	return NewAssignmentService(repo, zap.NewNop()), mocks
}

func TestAssignmentCreate_OwnClassOnly(t *testing.T) {
	svc, mocks := newAssignmentService(t)
	ctx := context.Background()
	teacher := seedTeacher(mocks.user, "Greenwood", "T-001")
	other := seedTeacher(mocks.user, "Greenwood", "T-002")

	class := &model.Class{Name: "十年级生物", TeacherID: teacher.Teacher.TeacherID, School: "Greenwood"}
	mocks.class.Create(ctx, class)

	due := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	resp, err := svc.Create(ctx, tenantFor(teacher), &dto.CreateAssignmentRequest{
		ClassID: class.ClassID,
		Title:   "细胞结构图",
		DueDate: due,
	})
	if err != nil {
		t.Fatalf("布置作业失败: %v", err)
	}
	if resp.Points != 100 {
		t.Errorf("缺省满分应为 100，实际=%d", resp.Points)
	}
	if resp.Closed {
		t.Error("未到截止时间的作业不应是关闭状态")
	}

	if _, err := svc.Create(ctx, tenantFor(other), &dto.CreateAssignmentRequest{
		ClassID: class.ClassID,
		Title:   "蹭班作业",
		DueDate: due,
	}); !apperr.IsAccessDenied(err) {
		t.Fatalf("在他人班级布置作业应被拒绝，实际=%v", err)
	}
}

func TestAssignmentCreate_BadDueDate(t *testing.T) {
	svc, mocks := newAssignmentService(t)
	ctx := context.Background()
	teacher := seedTeacher(mocks.user, "Greenwood", "T-001")
	class := &model.Class{Name: "十年级生物", TeacherID: teacher.Teacher.TeacherID, School: "Greenwood"}
	mocks.class.Create(ctx, class)

	_, err := svc.Create(ctx, tenantFor(teacher), &dto.CreateAssignmentRequest{
		ClassID: class.ClassID,
		Title:   "作业",
		DueDate: "2026/09/01",
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("非 RFC3339 截止时间应返回参数错误，实际=%v", err)
	}
}

func TestAssignmentListByClass_StudentMustBeEnrolled(t *testing.T) {
	svc, mocks := newAssignmentService(t)
	ctx := context.Background()
	teacher := seedTeacher(mocks.user, "Greenwood", "T-001")
	student := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPaid, nil)
	outsider := seedStudent(mocks.user, "Greenwood", "S-002", "hash", model.TuitionPaid, nil)

	class := &model.Class{Name: "十年级生物", TeacherID: teacher.Teacher.TeacherID, School: "Greenwood"}
	mocks.class.Create(ctx, class)
	mocks.enroll.Create(ctx, &model.Enrollment{
		ClassID:   class.ClassID,
		StudentID: student.Student.StudentID,
		School:    "Greenwood",
	})
	mocks.assignment.Create(ctx, &model.Assignment{
		ClassID:   class.ClassID,
		TeacherID: teacher.Teacher.TeacherID,
		Title:     "作业一",
		DueDate:   time.Now().Add(24 * time.Hour),
		Points:    100,
		School:    "Greenwood",
	})

	list, err := svc.ListByClass(ctx, tenantFor(student), class.ClassID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望 1 份作业，实际=%d", len(list))
	}

	if _, err := svc.ListByClass(ctx, tenantFor(outsider), class.ClassID); !apperr.IsAccessDenied(err) {
		t.Fatalf("未选课学生查看班级作业应被拒绝，实际=%v", err)
	}
}

func TestAssignmentListMine_StudentSeesEnrolledOnly(t *testing.T) {
	svc, mocks := newAssignmentService(t)
	ctx := context.Background()
	teacher := seedTeacher(mocks.user, "Greenwood", "T-001")
	student := seedStudent(mocks.user, "Greenwood", "S-001", "hash", model.TuitionPaid, nil)

	enrolled := &model.Class{Name: "已选班级", TeacherID: teacher.Teacher.TeacherID, School: "Greenwood"}
	notEnrolled := &model.Class{Name: "未选班级", TeacherID: teacher.Teacher.TeacherID, School: "Greenwood"}
	mocks.class.Create(ctx, enrolled)
	mocks.class.Create(ctx, notEnrolled)
	mocks.enroll.Create(ctx, &model.Enrollment{
		ClassID:   enrolled.ClassID,
		StudentID: student.Student.StudentID,
		School:    "Greenwood",
	})
	for _, c := range []*model.Class{enrolled, notEnrolled} {
		mocks.assignment.Create(ctx, &model.Assignment{
			ClassID:   c.ClassID,
			TeacherID: teacher.Teacher.TeacherID,
			Title:     c.Name + "的作业",
			DueDate:   time.Now().Add(24 * time.Hour),
			Points:    100,
			School:    "Greenwood",
		})
	}

	list, err := svc.ListMine(ctx, tenantFor(student))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].Title != "已选班级的作业" {
		t.Errorf("学生应只看到已选班级的作业，实际=%v", list)
	}
}

func TestAssignmentUpdate_AdminExemptFromOwnership(t *testing.T) {
	svc, mocks := newAssignmentService(t)
	ctx := context.Background()
	teacher := seedTeacher(mocks.user, "Greenwood", "T-001")
	admin := seedAdmin(mocks.user, "Greenwood", "A-001", model.RoleLevelPrincipal)

	assignment := &model.Assignment{
		ClassID:   "class-x",
		TeacherID: teacher.Teacher.TeacherID,
		Title:     "旧标题",
		DueDate:   time.Now().Add(24 * time.Hour),
		Points:    100,
		School:    "Greenwood",
	}
	mocks.assignment.Create(ctx, assignment)

	title := "新标题"
	resp, err := svc.Update(ctx, tenantFor(admin), assignment.AssignmentID, &dto.UpdateAssignmentRequest{Title: &title})
	if err != nil {
		t.Fatalf("管理员更新失败: %v", err)
	}
	if resp.Title != "新标题" {
		t.Errorf("标题应被更新，实际=%s", resp.Title)
	}
}
