package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

// AssignmentService 作业管理
type AssignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建作业服务
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{repo: repo, logger: logger}
}

// Create 教师在自己的班级下布置作业
func (s *AssignmentService) Create(ctx context.Context, tc *tenant.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if !tc.IsTeacher() {
		return nil, apperr.AccessDenied("仅教师可布置作业")
	}
	class, err := s.repo.Class.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperr.NotFound("班级不存在")
	}
	if err := tenant.Authorize(tc, class.School); err != nil {
		return nil, err
	}
	if class.TeacherID != tc.ProfileID {
		return nil, apperr.AccessDenied("只能在自己的班级布置作业")
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return nil, apperr.Validation("截止时间格式非法，应为 RFC3339")
	}

	points := req.Points
	if points <= 0 {
		points = 100
	}
	assignment := &model.Assignment{
		ClassID:     req.ClassID,
		TeacherID:   tc.ProfileID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Points:      points,
		School:      class.School,
	}
	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		return nil, apperr.Integrity("作业写入失败", err)
	}

	s.logger.Info("作业已布置",
		zap.String("assignment_id", assignment.AssignmentID),
		zap.String("class_id", req.ClassID))
	return toAssignmentResponse(assignment), nil
}

// Get 按 ID 取作业
func (s *AssignmentService) Get(ctx context.Context, tc *tenant.Context, assignmentID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadAuthorized(ctx, tc, assignmentID)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

// ListByClass 班级作业列表
func (s *AssignmentService) ListByClass(ctx context.Context, tc *tenant.Context, classID string) ([]*dto.AssignmentResponse, error) {
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
	// 学生须已选该班级
	if tc.IsStudent() {
		enrolled, err := s.repo.Enrollment.Exists(ctx, classID, tc.ProfileID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, apperr.AccessDenied("未选该班级")
		}
	}

	assignments, err := s.repo.Assignment.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, toAssignmentResponse(a))
	}
	return resp, nil
}

// ListMine 教师布置的作业 / 学生可见的作业
func (s *AssignmentService) ListMine(ctx context.Context, tc *tenant.Context) ([]*dto.AssignmentResponse, error) {
	var assignments []*model.Assignment
	var err error
	switch {
	case tc.IsTeacher():
		assignments, err = s.repo.Assignment.ListByTeacher(ctx, tc.ProfileID)
	case tc.IsStudent():
		assignments, err = s.repo.Assignment.ListByStudent(ctx, tc, tc.ProfileID)
	default:
		return nil, apperr.AccessDenied("仅教师或学生可查看作业列表")
	}
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, toAssignmentResponse(a))
	}
	return resp, nil
}

// Update 教师更新自己布置的作业
func (s *AssignmentService) Update(ctx context.Context, tc *tenant.Context, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadOwned(ctx, tc, assignmentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return nil, apperr.Validation("截止时间格式非法，应为 RFC3339")
		}
		assignment.DueDate = dueDate
	}
	if req.Points != nil {
		assignment.Points = *req.Points
	}

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

// Delete 教师删除自己布置的作业
func (s *AssignmentService) Delete(ctx context.Context, tc *tenant.Context, assignmentID string) error {
	assignment, err := s.loadOwned(ctx, tc, assignmentID)
	if err != nil {
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, assignment.AssignmentID); err != nil {
		return apperr.Integrity("作业删除失败，存在关联提交", err)
	}
	return nil
}

// loadAuthorized 单实体租户鉴权
func (s *AssignmentService) loadAuthorized(ctx context.Context, tc *tenant.Context, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperr.NotFound("作业不存在")
	}
	if err := tenant.Authorize(tc, assignment.School); err != nil {
		return nil, err
	}
	return assignment, nil
}

// loadOwned 在租户鉴权外额外要求是布置者本人（管理员豁免）
func (s *AssignmentService) loadOwned(ctx context.Context, tc *tenant.Context, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.loadAuthorized(ctx, tc, assignmentID)
	if err != nil {
		return nil, err
	}
	if tc.IsTeacher() && assignment.TeacherID != tc.ProfileID {
		return nil, apperr.AccessDenied("只能操作自己布置的作业")
	}
	return assignment, nil
}

func toAssignmentResponse(a *model.Assignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:          a.AssignmentID,
		ClassID:     a.ClassID,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate.Format(time.RFC3339),
		Points:      a.Points,
		Closed:      a.Closed(time.Now()),
	}
	if a.Class != nil {
		resp.ClassName = a.Class.Name
	}
	return resp
}
