package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Danosky8082/EdTech/internal/model"
)

// SubmissionRepository 作业提交仓储接口
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	Get(ctx context.Context, assignmentID, studentID string) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]*model.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Submission, error)
	Update(ctx context.Context, submission *model.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建提交仓储
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Upsert 按 (assignment_id, student_id) 落提交：重交覆盖内容、
// 刷新提交时间并清空已有评分与反馈
func (r *submissionRepository) Upsert(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"submission_type": submission.SubmissionType,
			"content":         submission.Content,
			"submitted_at":    submission.SubmittedAt,
			"grade":           nil,
			"feedback":        nil,
		}),
	}).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Student").
		Preload("Student.User").
		Where("submission_id = ?", id).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) Get(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]*model.Submission, error) {
	var submissions []*model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Preload("Student").
		Preload("Student.User").
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Submission, error) {
	var submissions []*model.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Assignment").
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) Update(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
