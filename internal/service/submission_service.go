package service

import (
	"context"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/filestore"
)

// SubmissionService 作业提交与评分
type SubmissionService struct {
	repo         *repository.Repository
	store        *filestore.Store
	notification *NotificationService
	logger       *zap.Logger
}

// NewSubmissionService 创建提交服务
func NewSubmissionService(repo *repository.Repository, store *filestore.Store, notification *NotificationService, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, store: store, notification: notification, logger: logger}
}

// SubmitText 学生提交文本/绘图作业。
// 重复提交覆盖旧内容并清空已有评分与反馈；截止后拒绝。
func (s *SubmissionService) SubmitText(ctx context.Context, tc *tenant.Context, assignmentID string, req *dto.SubmitTextRequest) (*dto.SubmissionResponse, error) {
	assignment, err := s.authorizeStudentSubmit(ctx, tc, assignmentID)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		AssignmentID:   assignmentID,
		StudentID:      tc.ProfileID,
		SubmissionType: req.SubmissionType,
		Content:        req.Content,
		School:         assignment.School,
		SubmittedAt:    time.Now(),
	}
	if err := s.repo.Submission.Upsert(ctx, submission); err != nil {
		return nil, apperr.Integrity("提交写入失败", err)
	}

	s.logger.Info("作业已提交",
		zap.String("assignment_id", assignmentID),
		zap.String("student_id", tc.ProfileID),
		zap.String("type", req.SubmissionType))
	return s.fetchResponse(ctx, assignmentID, tc.ProfileID)
}

// SubmitFile 学生提交文件作业
func (s *SubmissionService) SubmitFile(ctx context.Context, tc *tenant.Context, assignmentID string, file *multipart.FileHeader) (*dto.SubmissionResponse, error) {
	assignment, err := s.authorizeStudentSubmit(ctx, tc, assignmentID)
	if err != nil {
		return nil, err
	}

	key, err := s.store.Save("submissions", file)
	if err != nil {
		return nil, apperr.Validation("文件保存失败: " + err.Error())
	}

	submission := &model.Submission{
		AssignmentID:   assignmentID,
		StudentID:      tc.ProfileID,
		SubmissionType: model.SubmissionFile,
		Content:        key,
		School:         assignment.School,
		SubmittedAt:    time.Now(),
	}
	if err := s.repo.Submission.Upsert(ctx, submission); err != nil {
		return nil, apperr.Integrity("提交写入失败", err)
	}

	s.logger.Info("作业文件已提交",
		zap.String("assignment_id", assignmentID),
		zap.String("student_id", tc.ProfileID),
		zap.String("file_key", key))
	return s.fetchResponse(ctx, assignmentID, tc.ProfileID)
}

// ListByAssignment 教师查看某作业的全部提交
func (s *SubmissionService) ListByAssignment(ctx context.Context, tc *tenant.Context, assignmentID string) ([]*dto.SubmissionResponse, error) {
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
	if tc.IsTeacher() && assignment.TeacherID != tc.ProfileID {
		return nil, apperr.AccessDenied("只能查看自己作业的提交")
	}
	if tc.IsStudent() {
		return nil, apperr.AccessDenied("学生不能查看他人提交")
	}

	submissions, err := s.repo.Submission.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		resp = append(resp, toSubmissionResponse(sub))
	}
	return resp, nil
}

// ListMine 学生查看自己的提交
func (s *SubmissionService) ListMine(ctx context.Context, tc *tenant.Context) ([]*dto.SubmissionResponse, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可查看自己的提交")
	}
	submissions, err := s.repo.Submission.ListByStudent(ctx, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		resp = append(resp, toSubmissionResponse(sub))
	}
	return resp, nil
}

// Grade 教师评分。分数不得超出作业满分。
func (s *SubmissionService) Grade(ctx context.Context, tc *tenant.Context, submissionID string, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, apperr.NotFound("提交不存在")
	}
	if err := tenant.Authorize(tc, submission.School); err != nil {
		return nil, err
	}
	if submission.Assignment == nil {
		return nil, apperr.NotFound("提交关联的作业不存在")
	}
	if tc.IsTeacher() && submission.Assignment.TeacherID != tc.ProfileID {
		return nil, apperr.AccessDenied("只能评阅自己作业的提交")
	}
	if req.Grade > float64(submission.Assignment.Points) {
		return nil, apperr.Validation("分数不能超过作业满分")
	}

	grade := req.Grade
	submission.Grade = &grade
	if req.Feedback != "" {
		feedback := req.Feedback
		submission.Feedback = &feedback
	}
	if err := s.repo.Submission.Update(ctx, submission); err != nil {
		return nil, err
	}

	// 评分通知学生
	if submission.Student != nil {
		if user, err := s.repo.User.GetByStudentID(ctx, submission.StudentID); err == nil && user != nil {
			if err := s.notification.Push(ctx, user.UserID,
				"作业已评分",
				"作业《"+submission.Assignment.Title+"》已出分，请查看。",
				"fa-clipboard-check"); err != nil {
				s.logger.Warn("评分通知发送失败", zap.Error(err))
			}
		}
	}

	s.logger.Info("提交已评分",
		zap.String("submission_id", submissionID),
		zap.Float64("grade", req.Grade))
	return toSubmissionResponse(submission), nil
}

// OpenFile 下载提交文件（教师看本作业提交，学生看自己的）
func (s *SubmissionService) OpenFile(ctx context.Context, tc *tenant.Context, submissionID string) (string, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		return "", err
	}
	if submission == nil {
		return "", apperr.NotFound("提交不存在")
	}
	if err := tenant.Authorize(tc, submission.School); err != nil {
		return "", err
	}
	if tc.IsStudent() && submission.StudentID != tc.ProfileID {
		return "", apperr.AccessDenied("只能查看自己的提交")
	}
	if tc.IsTeacher() && (submission.Assignment == nil || submission.Assignment.TeacherID != tc.ProfileID) {
		return "", apperr.AccessDenied("只能查看自己作业的提交")
	}
	if submission.SubmissionType != model.SubmissionFile {
		return "", apperr.Validation("该提交不是文件类型")
	}
	return s.store.Path(submission.Content)
}

// authorizeStudentSubmit 提交前置校验：身份、选课、双侧同校、截止时间
func (s *SubmissionService) authorizeStudentSubmit(ctx context.Context, tc *tenant.Context, assignmentID string) (*model.Assignment, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可提交作业")
	}
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperr.NotFound("作业不存在")
	}
	if err := tenant.AuthorizeBoth(tc, assignment.School, tc.School); err != nil {
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, assignment.ClassID, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.AccessDenied("未选该班级，不能提交作业")
	}

	if assignment.Closed(time.Now()) {
		return nil, apperr.StateConflict("作业已截止，不能再提交")
	}
	return assignment, nil
}

func (s *SubmissionService) fetchResponse(ctx context.Context, assignmentID, studentID string) (*dto.SubmissionResponse, error) {
	submission, err := s.repo.Submission.Get(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, apperr.NotFound("提交不存在")
	}
	return toSubmissionResponse(submission), nil
}

func toSubmissionResponse(sub *model.Submission) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		ID:             sub.SubmissionID,
		AssignmentID:   sub.AssignmentID,
		StudentID:      sub.StudentID,
		SubmissionType: sub.SubmissionType,
		Content:        sub.Content,
		Grade:          sub.Grade,
		Feedback:       sub.Feedback,
		SubmittedAt:    sub.SubmittedAt.Format(time.RFC3339),
	}
	if sub.Student != nil && sub.Student.User != nil {
		resp.StudentName = sub.Student.User.FullName()
	}
	return resp
}
