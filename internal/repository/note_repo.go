package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Danosky8082/EdTech/internal/model"
)

// NoteRepository 学生笔记仓储接口
type NoteRepository interface {
	Create(ctx context.Context, note *model.StudentNote) error
	GetByID(ctx context.Context, id string) (*model.StudentNote, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.StudentNote, error)
	ListByStudentClass(ctx context.Context, studentID, classID string) ([]*model.StudentNote, error)
	Update(ctx context.Context, note *model.StudentNote) error
	Delete(ctx context.Context, id string) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository 创建笔记仓储
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.StudentNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*model.StudentNote, error) {
	var note model.StudentNote
	err := r.db.WithContext(ctx).Where("note_id = ?", id).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.StudentNote, error) {
	var notes []*model.StudentNote
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) ListByStudentClass(ctx context.Context, studentID, classID string) ([]*model.StudentNote, error) {
	var notes []*model.StudentNote
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Order("updated_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) Update(ctx context.Context, note *model.StudentNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("note_id = ?", id).Delete(&model.StudentNote{}).Error
}
