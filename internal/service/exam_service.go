package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
)

// 简答题无法自动判卷，非空作答先按半分计入，待教师复核
const shortAnswerProvisionalRatio = 0.5

// ExamService 考试与答卷状态机
type ExamService struct {
	repo         *repository.Repository
	notification *NotificationService
	logger       *zap.Logger
}

// NewExamService 创建考试服务
func NewExamService(repo *repository.Repository, notification *NotificationService, logger *zap.Logger) *ExamService {
	return &ExamService{repo: repo, notification: notification, logger: logger}
}

// ── 教师端：考试 CRUD ──

// Create 教师在自己的班级下创建考试
func (s *ExamService) Create(ctx context.Context, tc *tenant.Context, req *dto.CreateExamRequest) (*dto.ExamResponse, error) {
	if !tc.IsTeacher() {
		return nil, apperr.AccessDenied("仅教师可创建考试")
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
		return nil, apperr.AccessDenied("只能在自己的班级创建考试")
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, apperr.Validation("考试时间格式非法，应为 RFC3339")
	}

	questions, err := toQuestionList(req.Questions)
	if err != nil {
		return nil, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	showResults := true
	if req.ShowResults != nil {
		showResults = *req.ShowResults
	}
	totalMarks := questions.TotalMarks()
	if req.TotalMarks != nil && *req.TotalMarks > 0 {
		totalMarks = *req.TotalMarks
	}

	exam := &model.Exam{
		ClassID:     req.ClassID,
		TeacherID:   tc.ProfileID,
		Title:       req.Title,
		Questions:   questions,
		Duration:    req.Duration,
		Date:        date,
		MaxAttempts: maxAttempts,
		ShowResults: showResults,
		TotalMarks:  totalMarks,
		IsActive:    true,
		School:      class.School,
	}
	if err := s.repo.Exam.Create(ctx, exam); err != nil {
		return nil, apperr.Integrity("考试写入失败", err)
	}

	s.logger.Info("考试已创建",
		zap.String("exam_id", exam.ExamID),
		zap.String("class_id", req.ClassID),
		zap.Int("questions", len(questions)))
	return toExamResponse(exam), nil
}

// Get 教师/管理员视角取考试（含题目与答案）
func (s *ExamService) Get(ctx context.Context, tc *tenant.Context, examID string) (*dto.ExamResponse, error) {
	exam, err := s.loadAuthorized(ctx, tc, examID)
	if err != nil {
		return nil, err
	}
	if tc.IsStudent() {
		return nil, apperr.AccessDenied("学生不能查看考试答案")
	}
	return toExamResponse(exam), nil
}

// ListMine 教师创建的考试 / 学生可参加的考试
func (s *ExamService) ListMine(ctx context.Context, tc *tenant.Context) ([]*dto.ExamResponse, error) {
	var exams []*model.Exam
	var err error
	switch {
	case tc.IsTeacher():
		exams, err = s.repo.Exam.ListByTeacher(ctx, tc.ProfileID)
	case tc.IsStudent():
		exams, err = s.repo.Exam.ListByStudent(ctx, tc, tc.ProfileID)
	default:
		return nil, apperr.AccessDenied("仅教师或学生可查看考试列表")
	}
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ExamResponse, 0, len(exams))
	for _, e := range exams {
		r := toExamResponse(e)
		if tc.IsStudent() {
			// 学生列表不下发题目
			r.Questions = nil
		}
		resp = append(resp, r)
	}
	return resp, nil
}

// Update 教师更新自己创建的考试
func (s *ExamService) Update(ctx context.Context, tc *tenant.Context, examID string, req *dto.UpdateExamRequest) (*dto.ExamResponse, error) {
	exam, err := s.loadOwned(ctx, tc, examID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Questions != nil {
		questions, err := toQuestionList(req.Questions)
		if err != nil {
			return nil, err
		}
		exam.Questions = questions
		exam.TotalMarks = questions.TotalMarks()
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			return nil, apperr.Validation("考试时间格式非法，应为 RFC3339")
		}
		exam.Date = date
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = *req.MaxAttempts
	}
	if req.ShowResults != nil {
		exam.ShowResults = *req.ShowResults
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	if err := s.repo.Exam.Update(ctx, exam); err != nil {
		return nil, err
	}
	return toExamResponse(exam), nil
}

// Delete 教师删除自己创建的考试
func (s *ExamService) Delete(ctx context.Context, tc *tenant.Context, examID string) error {
	exam, err := s.loadOwned(ctx, tc, examID)
	if err != nil {
		return err
	}
	if err := s.repo.Exam.Delete(ctx, exam.ExamID); err != nil {
		return apperr.Integrity("考试删除失败，存在关联答卷", err)
	}
	return nil
}

// ImportQuestions 从 CSV 或 JSON 文件导入题目（追加到现有题目之后）。
// CSV 列: type,text,options(分号分隔),correctAnswer,marks
func (s *ExamService) ImportQuestions(ctx context.Context, tc *tenant.Context, examID string, fh *multipart.FileHeader) (*dto.ImportQuestionsResponse, error) {
	exam, err := s.loadOwned(ctx, tc, examID)
	if err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Validation("无法打开上传文件")
	}
	defer src.Close()

	var payloads []dto.QuestionPayload
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".json":
		if err := json.NewDecoder(src).Decode(&payloads); err != nil {
			return nil, apperr.Validation("JSON 解析失败: " + err.Error())
		}
	case ".csv":
		payloads, err = parseQuestionCSV(src)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Validation("仅支持 CSV 或 JSON 题目文件")
	}

	questions, err := toQuestionList(payloads)
	if err != nil {
		return nil, err
	}

	exam.Questions = append(exam.Questions, questions...)
	exam.TotalMarks = exam.Questions.TotalMarks()
	if err := s.repo.Exam.Update(ctx, exam); err != nil {
		return nil, err
	}

	s.logger.Info("题目已导入",
		zap.String("exam_id", examID),
		zap.Int("imported", len(questions)))
	return &dto.ImportQuestionsResponse{
		Imported:   len(questions),
		TotalMarks: exam.TotalMarks,
	}, nil
}

// ── 学生端：开考与交卷 ──

// Take 学生开考。窗口期 [date, date+duration] 内且未超次数限制时
// 开一份 in_progress 答卷；已有进行中答卷则续用（断线重连）。
func (s *ExamService) Take(ctx context.Context, tc *tenant.Context, examID string) (*dto.TakeExamResponse, error) {
	exam, err := s.authorizeStudentExam(ctx, tc, examID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !exam.WindowOpen(now) {
		return nil, apperr.StateConflict("不在考试窗口期内")
	}

	attempt, err := s.repo.Attempt.GetInProgress(ctx, examID, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		count, err := s.repo.Attempt.CountByExamStudent(ctx, examID, tc.ProfileID)
		if err != nil {
			return nil, err
		}
		if count >= int64(exam.MaxAttempts) {
			return nil, apperr.StateConflict("已达到考试次数上限")
		}

		attempt = &model.ExamAttempt{
			ExamID:    examID,
			StudentID: tc.ProfileID,
			Status:    model.AttemptInProgress,
			Answers:   model.AnswerList{},
			StartedAt: now,
			School:    exam.School,
		}
		// 部分唯一索引兜底并发开考
		if err := s.repo.Attempt.Create(ctx, attempt); err != nil {
			return nil, apperr.Integrity("答卷创建失败", err)
		}
	}

	questions := make([]dto.StudentQuestion, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		questions = append(questions, dto.StudentQuestion{
			Type:    q.Type,
			Text:    q.Text,
			Options: q.Options,
			Marks:   q.Marks,
		})
	}
	return &dto.TakeExamResponse{
		AttemptID: attempt.AttemptID,
		ExamID:    exam.ExamID,
		Title:     exam.Title,
		Duration:  exam.Duration,
		EndsAt:    exam.EndTime().Format(time.RFC3339),
		Questions: questions,
	}, nil
}

// Submit 学生交卷并自动判卷：
// 选择/判断题精确匹配得满分；简答题非空按临时比例计分待教师复核。
func (s *ExamService) Submit(ctx context.Context, tc *tenant.Context, examID string, req *dto.SubmitExamRequest) (*dto.SubmitExamResponse, error) {
	exam, err := s.authorizeStudentExam(ctx, tc, examID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt.GetInProgress(ctx, examID, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, apperr.StateConflict("没有进行中的答卷，请先开考")
	}

	score := AutoScore(exam.Questions, req.Answers)

	now := time.Now()
	attempt.Status = model.AttemptSubmitted
	attempt.Answers = model.AnswerList(req.Answers)
	attempt.Score = &score
	attempt.TimeSpent = req.TimeSpent
	attempt.SubmittedAt = &now

	if err := s.repo.Attempt.Update(ctx, attempt); err != nil {
		return nil, err
	}

	s.logger.Info("答卷已提交",
		zap.String("attempt_id", attempt.AttemptID),
		zap.Float64("auto_score", score))
	return &dto.SubmitExamResponse{
		AttemptID:      attempt.AttemptID,
		Score:          score,
		TotalQuestions: len(exam.Questions),
	}, nil
}

// MyResults 学生查看自己的成绩：仅 published 答卷可见，
// 且考试关闭了 show_results 时整卷对学生隐藏
func (s *ExamService) MyResults(ctx context.Context, tc *tenant.Context) ([]*dto.AttemptResponse, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可查看自己的成绩")
	}
	attempts, err := s.repo.Attempt.ListByStudent(ctx, tc.ProfileID, model.AttemptPublished)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		if a.Exam != nil && !a.Exam.ShowResults {
			continue
		}
		resp = append(resp, toAttemptResponse(a))
	}
	return resp, nil
}

// ── 教师端：评卷与发布 ──

// ListAttempts 教师查看某考试的答卷
func (s *ExamService) ListAttempts(ctx context.Context, tc *tenant.Context, examID string) ([]*dto.AttemptResponse, error) {
	if _, err := s.loadOwned(ctx, tc, examID); err != nil {
		return nil, err
	}
	attempts, err := s.repo.Attempt.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, toAttemptResponse(a))
	}
	return resp, nil
}

// GradeAttempt 教师复核评卷: submitted → graded
func (s *ExamService) GradeAttempt(ctx context.Context, tc *tenant.Context, attemptID string, req *dto.GradeAttemptRequest) (*dto.AttemptResponse, error) {
	attempt, err := s.loadOwnedAttempt(ctx, tc, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptSubmitted {
		return nil, apperr.StateConflict("仅已提交的答卷可评卷，当前状态: " + attempt.Status)
	}
	if attempt.Exam != nil && req.TotalScore > attempt.Exam.TotalMarks {
		return nil, apperr.Validation("分数不能超过考试总分")
	}

	now := time.Now()
	score := req.TotalScore
	attempt.Status = model.AttemptGraded
	attempt.Score = &score
	attempt.GradedAt = &now
	attempt.GradedBy = &tc.UserID
	if req.Feedback != "" {
		feedback := req.Feedback
		attempt.TeacherFeedback = &feedback
	}

	if err := s.repo.Attempt.Update(ctx, attempt); err != nil {
		return nil, err
	}
	s.logger.Info("答卷已评卷",
		zap.String("attempt_id", attemptID),
		zap.Float64("score", score))
	return toAttemptResponse(attempt), nil
}

// PublishResults 批量发布: graded → published，并逐学生通知。
// 跳过未评卷的答卷，不产生部分发布的中间态。
func (s *ExamService) PublishResults(ctx context.Context, tc *tenant.Context, examID string) (*dto.PublishResultsResponse, error) {
	exam, err := s.loadOwned(ctx, tc, examID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt.ListByExam(ctx, examID, model.AttemptGraded)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, apperr.StateConflict("没有已评卷待发布的答卷")
	}

	var studentUserIDs []string
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, attempt := range attempts {
			attempt.Status = model.AttemptPublished
			if err := tx.Attempt.Update(ctx, attempt); err != nil {
				return err
			}
			if attempt.Student != nil && attempt.Student.User != nil {
				studentUserIDs = append(studentUserIDs, attempt.Student.User.UserID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notification.PushBatch(ctx, studentUserIDs,
		"考试成绩已发布",
		"考试《"+exam.Title+"》的成绩已发布，请查看。",
		"fa-graduation-cap"); err != nil {
		s.logger.Warn("成绩发布通知失败", zap.Error(err))
	}

	s.logger.Info("成绩已发布",
		zap.String("exam_id", examID),
		zap.Int("published", len(attempts)))
	return &dto.PublishResultsResponse{
		Published:        len(attempts),
		NotifiedStudents: len(studentUserIDs),
	}, nil
}

// ── 判卷 ──

// AutoScore 自动判卷。答案与题目按下标对齐，缺答计零分。
func AutoScore(questions model.QuestionList, answers []string) float64 {
	var score float64
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		answer := strings.TrimSpace(answers[i])
		if answer == "" {
			continue
		}
		switch q.Type {
		case model.QuestionMultipleChoice, model.QuestionTrueFalse:
			if strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer)) {
				score += q.Marks
			}
		case model.QuestionShortAnswer:
			score += q.Marks * shortAnswerProvisionalRatio
		}
	}
	return score
}

// ── 内部辅助 ──

func (s *ExamService) loadAuthorized(ctx context.Context, tc *tenant.Context, examID string) (*model.Exam, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, apperr.NotFound("考试不存在")
	}
	if err := tenant.Authorize(tc, exam.School); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) loadOwned(ctx context.Context, tc *tenant.Context, examID string) (*model.Exam, error) {
	exam, err := s.loadAuthorized(ctx, tc, examID)
	if err != nil {
		return nil, err
	}
	if tc.IsStudent() {
		return nil, apperr.AccessDenied("无权操作考试")
	}
	if tc.IsTeacher() && exam.TeacherID != tc.ProfileID {
		return nil, apperr.AccessDenied("只能操作自己创建的考试")
	}
	return exam, nil
}

func (s *ExamService) loadOwnedAttempt(ctx context.Context, tc *tenant.Context, attemptID string) (*model.ExamAttempt, error) {
	attempt, err := s.repo.Attempt.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, apperr.NotFound("答卷不存在")
	}
	if err := tenant.Authorize(tc, attempt.School); err != nil {
		return nil, err
	}
	if tc.IsStudent() {
		return nil, apperr.AccessDenied("无权操作答卷")
	}
	if tc.IsTeacher() && (attempt.Exam == nil || attempt.Exam.TeacherID != tc.ProfileID) {
		return nil, apperr.AccessDenied("只能评阅自己考试的答卷")
	}
	return attempt, nil
}

// authorizeStudentExam 学生考试前置校验：选课、双侧同校、考试启用
func (s *ExamService) authorizeStudentExam(ctx context.Context, tc *tenant.Context, examID string) (*model.Exam, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可参加考试")
	}
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, apperr.NotFound("考试不存在")
	}
	if err := tenant.AuthorizeBoth(tc, exam.School, tc.School); err != nil {
		return nil, err
	}
	if !exam.IsActive {
		return nil, apperr.StateConflict("考试未启用")
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, exam.ClassID, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.AccessDenied("未选该班级，不能参加考试")
	}
	return exam, nil
}

func toQuestionList(payloads []dto.QuestionPayload) (model.QuestionList, error) {
	questions := make(model.QuestionList, 0, len(payloads))
	for i, p := range payloads {
		if p.Type != model.QuestionShortAnswer && p.CorrectAnswer == "" {
			return nil, apperr.Validation("第 " + strconv.Itoa(i+1) + " 题缺少正确答案")
		}
		marks := p.Marks
		if marks <= 0 {
			marks = 1
		}
		questions = append(questions, model.Question{
			Type:          p.Type,
			Text:          p.Text,
			Options:       p.Options,
			CorrectAnswer: p.CorrectAnswer,
			Marks:         marks,
		})
	}
	return questions, nil
}

// parseQuestionCSV 解析题目 CSV: type,text,options(分号分隔),correctAnswer,marks
func parseQuestionCSV(r io.Reader) ([]dto.QuestionPayload, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var payloads []dto.QuestionPayload
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation("CSV 解析失败: " + err.Error())
		}
		line++
		// 跳过表头
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "type") {
			continue
		}
		if len(record) < 4 {
			return nil, apperr.Validation("CSV 第 " + strconv.Itoa(line) + " 行列数不足")
		}

		payload := dto.QuestionPayload{
			Type:          strings.TrimSpace(record[0]),
			Text:          strings.TrimSpace(record[1]),
			CorrectAnswer: strings.TrimSpace(record[3]),
			Marks:         1,
		}
		if opts := strings.TrimSpace(record[2]); opts != "" {
			payload.Options = strings.Split(opts, ";")
		}
		if len(record) >= 5 {
			if marks, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64); err == nil && marks > 0 {
				payload.Marks = marks
			}
		}

		switch payload.Type {
		case model.QuestionMultipleChoice, model.QuestionTrueFalse, model.QuestionShortAnswer:
		default:
			return nil, apperr.Validation("CSV 第 " + strconv.Itoa(line) + " 行题型非法: " + payload.Type)
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

func toExamResponse(e *model.Exam) *dto.ExamResponse {
	questions := make([]dto.QuestionPayload, 0, len(e.Questions))
	for _, q := range e.Questions {
		questions = append(questions, dto.QuestionPayload{
			Type:          q.Type,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         q.Marks,
		})
	}
	return &dto.ExamResponse{
		ID:          e.ExamID,
		ClassID:     e.ClassID,
		Title:       e.Title,
		Questions:   questions,
		Duration:    e.Duration,
		Date:        e.Date.Format(time.RFC3339),
		MaxAttempts: e.MaxAttempts,
		ShowResults: e.ShowResults,
		TotalMarks:  e.TotalMarks,
		IsActive:    e.IsActive,
	}
}

func toAttemptResponse(a *model.ExamAttempt) *dto.AttemptResponse {
	resp := &dto.AttemptResponse{
		ID:        a.AttemptID,
		ExamID:    a.ExamID,
		StudentID: a.StudentID,
		Status:    a.Status,
		Answers:   []string(a.Answers),
		Score:     a.Score,
		Feedback:  a.TeacherFeedback,
		TimeSpent: a.TimeSpent,
		StartedAt: a.StartedAt.Format(time.RFC3339),
	}
	if a.Exam != nil {
		resp.ExamTitle = a.Exam.Title
	}
	if a.Student != nil && a.Student.User != nil {
		resp.StudentName = a.Student.User.FullName()
	}
	if a.SubmittedAt != nil {
		v := a.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	return resp
}
