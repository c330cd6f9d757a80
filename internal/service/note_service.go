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

// NoteService 学生课堂笔记（始终私有，跨角色不可见）
type NoteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNoteService 创建笔记服务
func NewNoteService(repo *repository.Repository, logger *zap.Logger) *NoteService {
	return &NoteService{repo: repo, logger: logger}
}

// Save 学生保存笔记（须已选该班级）
func (s *NoteService) Save(ctx context.Context, tc *tenant.Context, req *dto.SaveNoteRequest) (*dto.NoteResponse, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可记录笔记")
	}
	enrolled, err := s.repo.Enrollment.Exists(ctx, req.ClassID, tc.ProfileID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.AccessDenied("未选该班级，不能记录笔记")
	}

	note := &model.StudentNote{
		StudentID: tc.ProfileID,
		ClassID:   req.ClassID,
		Content:   model.JSONMap(req.Content),
		School:    tc.School,
	}
	if err := s.repo.Note.Create(ctx, note); err != nil {
		return nil, apperr.Integrity("笔记写入失败", err)
	}
	return toNoteResponse(note), nil
}

// List 学生的笔记，classID 非空时限定班级
func (s *NoteService) List(ctx context.Context, tc *tenant.Context, classID string) ([]*dto.NoteResponse, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可查看笔记")
	}
	var notes []*model.StudentNote
	var err error
	if classID != "" {
		notes, err = s.repo.Note.ListByStudentClass(ctx, tc.ProfileID, classID)
	} else {
		notes, err = s.repo.Note.ListByStudent(ctx, tc.ProfileID)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]*dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	return resp, nil
}

// Update 学生更新自己的笔记
func (s *NoteService) Update(ctx context.Context, tc *tenant.Context, noteID string, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := s.loadOwned(ctx, tc, noteID)
	if err != nil {
		return nil, err
	}
	note.Content = model.JSONMap(req.Content)
	if err := s.repo.Note.Update(ctx, note); err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

// Delete 学生删除自己的笔记
func (s *NoteService) Delete(ctx context.Context, tc *tenant.Context, noteID string) error {
	note, err := s.loadOwned(ctx, tc, noteID)
	if err != nil {
		return err
	}
	return s.repo.Note.Delete(ctx, note.NoteID)
}

// loadOwned 笔记归属校验：仅记录者本人可达
func (s *NoteService) loadOwned(ctx context.Context, tc *tenant.Context, noteID string) (*model.StudentNote, error) {
	if !tc.IsStudent() {
		return nil, apperr.AccessDenied("仅学生可操作笔记")
	}
	note, err := s.repo.Note.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil || note.StudentID != tc.ProfileID {
		return nil, apperr.NotFound("笔记不存在")
	}
	return note, nil
}

func toNoteResponse(n *model.StudentNote) *dto.NoteResponse {
	return &dto.NoteResponse{
		ID:        n.NoteID,
		ClassID:   n.ClassID,
		Content:   map[string]interface{}(n.Content),
		UpdatedAt: n.UpdatedAt.Format(time.RFC3339),
	}
}
