package service

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/filestore"
)

// MaterialService 课程资料
type MaterialService struct {
	repo   *repository.Repository
	store  *filestore.Store
	logger *zap.Logger
}

// NewMaterialService 创建资料服务
func NewMaterialService(repo *repository.Repository, store *filestore.Store, logger *zap.Logger) *MaterialService {
	return &MaterialService{repo: repo, store: store, logger: logger}
}

// Upload 教师上传资料。挂靠班级时班级必须是自己的。
func (s *MaterialService) Upload(ctx context.Context, tc *tenant.Context, req *dto.UploadMaterialRequest, fh *multipart.FileHeader) (*dto.MaterialResponse, error) {
	if !tc.IsTeacher() {
		return nil, apperr.AccessDenied("仅教师可上传资料")
	}

	var classID *string
	if req.ClassID != "" {
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
			return nil, apperr.AccessDenied("只能向自己的班级上传资料")
		}
		classID = &req.ClassID
	}

	key, err := s.store.Save("materials", fh)
	if err != nil {
		return nil, apperr.Validation("文件保存失败: " + err.Error())
	}

	material := &model.Material{
		TeacherID: tc.ProfileID,
		ClassID:   classID,
		Title:     req.Title,
		FilePath:  key,
		FileType:  strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), "."),
		IsPublic:  req.IsPublic,
		School:    tc.School,
	}
	if err := s.repo.Material.Create(ctx, material); err != nil {
		return nil, apperr.Integrity("资料写入失败", err)
	}

	s.logger.Info("资料已上传",
		zap.String("material_id", material.MaterialID),
		zap.String("teacher_id", tc.ProfileID))
	return toMaterialResponse(material), nil
}

// ListMine 教师名下的资料 / 学生可见的资料。
// 学生可见 = 已选班级挂靠的资料 + 授课教师标记公开的资料。
func (s *MaterialService) ListMine(ctx context.Context, tc *tenant.Context) ([]*dto.MaterialResponse, error) {
	var materials []*model.Material
	var err error
	switch {
	case tc.IsTeacher():
		materials, err = s.repo.Material.ListByTeacher(ctx, tc.ProfileID)
	case tc.IsStudent():
		materials, err = s.repo.Material.ListForStudent(ctx, tc, tc.ProfileID)
	default:
		return nil, apperr.AccessDenied("仅教师或学生可查看资料列表")
	}
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		resp = append(resp, toMaterialResponse(m))
	}
	return resp, nil
}

// Download 下载资料。学生侧按可见性规则鉴权。
func (s *MaterialService) Download(ctx context.Context, tc *tenant.Context, materialID string) (string, string, error) {
	material, err := s.repo.Material.GetByID(ctx, materialID)
	if err != nil {
		return "", "", err
	}
	if material == nil {
		return "", "", apperr.NotFound("资料不存在")
	}
	if err := tenant.Authorize(tc, material.School); err != nil {
		return "", "", err
	}

	switch {
	case tc.IsTeacher():
		if material.TeacherID != tc.ProfileID {
			return "", "", apperr.AccessDenied("只能下载自己上传的资料")
		}
	case tc.IsStudent():
		visible, err := s.visibleToStudent(ctx, material, tc.ProfileID)
		if err != nil {
			return "", "", err
		}
		if !visible {
			return "", "", apperr.AccessDenied("无权下载该资料")
		}
	}

	path, err := s.store.Path(material.FilePath)
	if err != nil {
		return "", "", apperr.NotFound("资料文件不存在")
	}
	return path, material.Title, nil
}

// Delete 教师删除自己的资料（含磁盘文件）
func (s *MaterialService) Delete(ctx context.Context, tc *tenant.Context, materialID string) error {
	material, err := s.repo.Material.GetByID(ctx, materialID)
	if err != nil {
		return err
	}
	if material == nil {
		return apperr.NotFound("资料不存在")
	}
	if err := tenant.Authorize(tc, material.School); err != nil {
		return err
	}
	if tc.IsTeacher() && material.TeacherID != tc.ProfileID {
		return apperr.AccessDenied("只能删除自己上传的资料")
	}

	if err := s.repo.Material.Delete(ctx, materialID); err != nil {
		return err
	}
	if err := s.store.Remove(material.FilePath); err != nil {
		s.logger.Warn("资料文件删除失败",
			zap.String("file_path", material.FilePath),
			zap.Error(err))
	}
	return nil
}

// visibleToStudent 学生可见性：挂靠班级已选，或公开且来自授课教师
func (s *MaterialService) visibleToStudent(ctx context.Context, material *model.Material, studentID string) (bool, error) {
	if material.ClassID != nil {
		enrolled, err := s.repo.Enrollment.Exists(ctx, *material.ClassID, studentID)
		if err != nil {
			return false, err
		}
		if enrolled {
			return true, nil
		}
	}
	if !material.IsPublic {
		return false, nil
	}
	// 公开资料要求上传教师至少给该学生上过一门课
	classes, err := s.repo.Class.ListByStudent(ctx, studentID)
	if err != nil {
		return false, err
	}
	for _, class := range classes {
		if class.TeacherID == material.TeacherID {
			return true, nil
		}
	}
	return false, nil
}

func toMaterialResponse(m *model.Material) *dto.MaterialResponse {
	resp := &dto.MaterialResponse{
		ID:        m.MaterialID,
		Title:     m.Title,
		ClassID:   m.ClassID,
		FileType:  m.FileType,
		IsPublic:  m.IsPublic,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.Class != nil {
		resp.ClassName = m.Class.Name
	}
	return resp
}
