package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

// ClassService 班级与选课管理
type ClassService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建班级服务
func NewClassService(repo *repository.Repository, logger *zap.Logger) *ClassService {
	return &ClassService{repo: repo, logger: logger}
}

// Create 创建班级。租户键从授课教师的 User 行复制，
// 教师必须在操作者可达的学校内。
func (s *ClassService) Create(ctx context.Context, tc *tenant.Context, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	teacherUser, err := s.loadTeacherByProfileID(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Authorize(tc, teacherUser.SchoolOrEmpty()); err != nil {
		return nil, err
	}

	class := &model.Class{
		Name:      req.Name,
		Grade:     req.Grade,
		Section:   req.Section,
		TeacherID: req.TeacherID,
		School:    teacherUser.SchoolOrEmpty(),
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		return nil, apperr.Integrity("班级写入失败", err)
	}

	s.logger.Info("班级已创建",
		zap.String("class_id", class.ClassID),
		zap.String("school", class.School))
	return toClassResponse(class, teacherUser), nil
}

// Get 按 ID 取班级
func (s *ClassService) Get(ctx context.Context, tc *tenant.Context, classID string) (*dto.ClassResponse, error) {
	class, err := s.loadAuthorized(ctx, tc, classID)
	if err != nil {
		return nil, err
	}
	return toClassResponse(class, teacherUserOf(class)), nil
}

// List 班级列表（租户过滤）
func (s *ClassService) List(ctx context.Context, tc *tenant.Context, req *dto.ClassListRequest) ([]*dto.ClassResponse, int64, error) {
	classes, total, err := s.repo.Class.List(ctx, tc, req)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]*dto.ClassResponse, 0, len(classes))
	for _, c := range classes {
		resp = append(resp, toClassResponse(c, teacherUserOf(c)))
	}
	return resp, total, nil
}

// ListMine 教师名下的班级
func (s *ClassService) ListMine(ctx context.Context, tc *tenant.Context) ([]*dto.ClassResponse, error) {
	if !tc.IsTeacher() {
		return nil, apperr.AccessDenied("仅教师可查看名下班级")
	}
	classes, err := s.repo.Class.ListByTeacher(ctx, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.ClassResponse, 0, len(classes))
	for _, c := range classes {
		resp = append(resp, toClassResponse(c, nil))
	}
	return resp, nil
}

// ListEnrolled 学生已选的班级
func (s *ClassService) ListEnrolled(ctx context.Context, tc *tenant.Context) ([]*dto.ClassResponse, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可查看已选班级")
	}
	classes, err := s.repo.Class.ListByStudent(ctx, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.ClassResponse, 0, len(classes))
	for _, c := range classes {
		resp = append(resp, toClassResponse(c, teacherUserOf(c)))
	}
	return resp, nil
}

// Update 更新班级基础信息（不允许改学校与教师归属）
func (s *ClassService) Update(ctx context.Context, tc *tenant.Context, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	class, err := s.loadAuthorized(ctx, tc, classID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Grade != nil {
		class.Grade = *req.Grade
	}
	if req.Section != nil {
		class.Section = *req.Section
	}
	if err := s.repo.Class.Update(ctx, class); err != nil {
		return nil, err
	}
	return toClassResponse(class, teacherUserOf(class)), nil
}

// Delete 删除班级及选课记录
func (s *ClassService) Delete(ctx context.Context, tc *tenant.Context, classID string) error {
	class, err := s.loadAuthorized(ctx, tc, classID)
	if err != nil {
		return err
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Enrollment.DeleteByClass(ctx, classID); err != nil {
			return err
		}
		if err := tx.Class.Delete(ctx, class.ClassID); err != nil {
			return apperr.Integrity("班级删除失败，存在关联数据", err)
		}
		return nil
	})
}

// Enroll 批量选课。逐个校验学生与班级同校（双侧校验），
// 已在班级中的幂等跳过。
func (s *ClassService) Enroll(ctx context.Context, tc *tenant.Context, classID string, req *dto.EnrollStudentsRequest) (*dto.EnrollResult, error) {
	class, err := s.loadAuthorized(ctx, tc, classID)
	if err != nil {
		return nil, err
	}

	result := &dto.EnrollResult{}
	for _, studentUserID := range req.StudentIDs {
		student, school, err := s.loadStudentByUserID(ctx, studentUserID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", studentUserID, err))
			continue
		}
		if err := tenant.AuthorizeBoth(tc, class.School, school); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: 学生与班级不同校", studentUserID))
			continue
		}

		exists, err := s.repo.Enrollment.Exists(ctx, classID, student.StudentID)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		if err := s.repo.Enrollment.Create(ctx, &model.Enrollment{
			ClassID:   classID,
			StudentID: student.StudentID,
			School:    class.School,
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: 选课写入失败", studentUserID))
			continue
		}
		result.Enrolled++
	}

	s.logger.Info("批量选课完成",
		zap.String("class_id", classID),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// Unenroll 退课
func (s *ClassService) Unenroll(ctx context.Context, tc *tenant.Context, classID, studentUserID string) error {
	if _, err := s.loadAuthorized(ctx, tc, classID); err != nil {
		return err
	}
	student, _, err := s.loadStudentByUserID(ctx, studentUserID)
	if err != nil {
		return err
	}
	return s.repo.Enrollment.Delete(ctx, classID, student.StudentID)
}

// Roster 班级名册。教师只能看自己的班级。
func (s *ClassService) Roster(ctx context.Context, tc *tenant.Context, classID string) ([]*dto.UserResponse, error) {
	class, err := s.loadAuthorized(ctx, tc, classID)
	if err != nil {
		return nil, err
	}
	if tc.IsTeacher() && class.TeacherID != tc.ProfileID {
		return nil, apperr.AccessDenied("只能查看自己班级的名册")
	}

	enrollments, err := s.repo.Enrollment.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	roster := make([]*dto.UserResponse, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Student == nil || e.Student.User == nil {
			continue
		}
		u := e.Student.User
		u.Student = e.Student
		roster = append(roster, toUserResponse(u))
	}
	return roster, nil
}

// ── 内部辅助 ──

func (s *ClassService) loadAuthorized(ctx context.Context, tc *tenant.Context, classID string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperr.NotFound("班级不存在")
	}
	if err := tenant.Authorize(tc, class.School); err != nil {
		return nil, err
	}
	return class, nil
}

// Dashboard 教师工作台：名下班级、学生、作业、考试与待批改提交的计数
func (s *ClassService) Dashboard(ctx context.Context, tc *tenant.Context) (*dto.TeacherDashboardResponse, error) {
	if !tc.IsTeacher() {
		return nil, apperr.AccessDenied("仅教师可查看工作台")
	}

	resp := &dto.TeacherDashboardResponse{}

	classes, err := s.repo.Class.ListByTeacher(ctx, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	resp.Classes = len(classes)

	// 同一学生跨多个班只计一次
	seen := make(map[string]struct{})
	for _, class := range classes {
		enrollments, err := s.repo.Enrollment.ListByClass(ctx, class.ClassID)
		if err != nil {
			return nil, err
		}
		for _, e := range enrollments {
			seen[e.StudentID] = struct{}{}
		}
	}
	resp.Students = len(seen)

	assignments, err := s.repo.Assignment.ListByTeacher(ctx, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	resp.Assignments = len(assignments)
	for _, a := range assignments {
		submissions, err := s.repo.Submission.ListByAssignment(ctx, a.AssignmentID)
		if err != nil {
			return nil, err
		}
		for _, sub := range submissions {
			if sub.Grade == nil {
				resp.PendingSubmissions++
			}
		}
	}

	exams, err := s.repo.Exam.ListByTeacher(ctx, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	resp.Exams = len(exams)

	return resp, nil
}

// loadTeacherByProfileID 按教师档案 ID 取教师用户
func (s *ClassService) loadTeacherByProfileID(ctx context.Context, teacherID string) (*model.User, error) {
	user, err := s.repo.User.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("教师不存在")
	}
	return user, nil
}

// loadStudentByUserID 按用户 ID 取学生档案及其学校
func (s *ClassService) loadStudentByUserID(ctx context.Context, userID string) (*model.Student, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.Role != model.RoleStudent || user.Student == nil {
		return nil, "", apperr.NotFound("学生不存在")
	}
	return user.Student, user.SchoolOrEmpty(), nil
}

func teacherUserOf(c *model.Class) *model.User {
	if c.Teacher == nil {
		return nil
	}
	return c.Teacher.User
}

func toClassResponse(c *model.Class, teacherUser *model.User) *dto.ClassResponse {
	resp := &dto.ClassResponse{
		ID:        c.ClassID,
		Name:      c.Name,
		Grade:     c.Grade,
		Section:   c.Section,
		TeacherID: c.TeacherID,
		School:    c.School,
	}
	if teacherUser != nil {
		resp.TeacherName = teacherUser.FullName()
	}
	return resp
}
