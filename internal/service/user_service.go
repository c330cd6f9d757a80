package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/filestore"
)

// UserService 用户管理服务（管理端）
type UserService struct {
	repo    *repository.Repository
	cfg     *config.Config
	tuition *TuitionService
	store   *filestore.Store
	logger  *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repo *repository.Repository, cfg *config.Config, tuition *TuitionService, store *filestore.Store, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, cfg: cfg, tuition: tuition, store: store, logger: logger}
}

// Create 管理员创建用户（含角色档案，单事务）。
// 校级管理员创建的用户强制归属本校；学校一经落库不再变更。
func (s *UserService) Create(ctx context.Context, tc *tenant.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	// 租户归属判定：超管可指定学校，校级管理员只能在本校建号
	school := req.School
	if !tc.IsSuperAdmin {
		if tc.School == "" {
			return nil, apperr.AccessDenied("当前管理员未归属任何学校，无法创建用户")
		}
		school = tc.School
	}
	if school == "" && req.Role != model.RoleAdmin {
		return nil, apperr.Validation("教师与学生必须归属某个学校")
	}

	exists, err := s.repo.User.ExistsByIDNumber(ctx, req.IDNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation("证件号已被使用: " + req.IDNumber)
	}

	initialPassword := s.cfg.Auth.DefaultPassword
	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		IDNumber:            req.IDNumber,
		PasswordHash:        string(hash),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Phone:               req.Phone,
		Role:                req.Role,
		IsActive:            true,
		IsTemporaryPassword: true,
	}
	if school != "" {
		user.School = &school
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, apperr.Validation("出生日期格式非法，应为 YYYY-MM-DD")
		}
		user.DateOfBirth = &dob
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return apperr.Integrity("用户写入失败", err)
		}

		switch req.Role {
		case model.RoleStudent:
			student := &model.Student{
				UserID:  user.UserID,
				Grade:   req.Grade,
				Section: req.Section,
			}
			status := req.TuitionStatus
			if status == "" {
				status = model.TuitionUnpaid
			}
			if err := ApplyTuitionTransition(student, status, 0, s.cfg.Tuition.TempPasswordDays, time.Now()); err != nil {
				return err
			}
			if err := tx.User.CreateStudent(ctx, student); err != nil {
				return apperr.Integrity("学生档案写入失败", err)
			}
			// 建号即缴清且带收据号时顺带落台账，查重口径同学费模块
			if status == model.TuitionPaid && req.ReceiptNumber != "" {
				now := time.Now()
				payment := &model.TuitionPayment{
					ReceiptNumber: req.ReceiptNumber,
					StudentID:     student.StudentID,
					Status:        "verified",
					Semester:      currentSemester(now),
					VerifiedBy:    &tc.UserID,
					VerifiedAt:    &now,
					School:        school,
				}
				if err := s.tuition.writeLedger(ctx, tx, payment); err != nil {
					return err
				}
			}
			user.Student = student

		case model.RoleTeacher:
			teacher := &model.Teacher{
				UserID:  user.UserID,
				Subject: req.Subject,
			}
			if err := tx.User.CreateTeacher(ctx, teacher); err != nil {
				return apperr.Integrity("教师档案写入失败", err)
			}
			user.Teacher = teacher

		case model.RoleAdmin:
			// 只有超管能创建超管
			level := req.RoleLevel
			if level == "" {
				level = model.RoleLevelAdministrator
			}
			if level == model.RoleLevelSuperAdmin && !tc.IsSuperAdmin {
				return apperr.AccessDenied("仅超级管理员可创建超级管理员")
			}
			admin := &model.Admin{
				UserID:    user.UserID,
				RoleLevel: level,
			}
			if err := tx.User.CreateAdmin(ctx, admin); err != nil {
				return apperr.Integrity("管理员档案写入失败", err)
			}
			user.Admin = admin
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("用户已创建",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("operator", tc.UserID))

	return &dto.CreateUserResponse{
		User:         toUserResponse(user),
		TempPassword: initialPassword,
	}, nil
}

// List 用户列表（自动叠加租户过滤）
func (s *UserService) List(ctx context.Context, tc *tenant.Context, req *dto.UserListRequest) ([]*dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, tc, req)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return resp, total, nil
}

// Get 按 ID 取用户（单实体鉴权）
func (s *UserService) Get(ctx context.Context, tc *tenant.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.loadAuthorized(ctx, tc, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Update 更新用户基础信息与角色档案字段
func (s *UserService) Update(ctx context.Context, tc *tenant.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.loadAuthorized(ctx, tc, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if user.Student != nil && (req.Grade != nil || req.Section != nil) {
			if req.Grade != nil {
				user.Student.Grade = *req.Grade
			}
			if req.Section != nil {
				user.Student.Section = *req.Section
			}
			return tx.User.UpdateStudent(ctx, user.Student)
		}
		if user.Teacher != nil && req.Subject != nil {
			user.Teacher.Subject = *req.Subject
			return tx.User.UpdateTeacher(ctx, user.Teacher)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// 头像仅收常见图片格式
var avatarExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadAvatar 管理员上传/更换用户头像。旧头像文件随替换清理。
func (s *UserService) UploadAvatar(ctx context.Context, tc *tenant.Context, userID string, fh *multipart.FileHeader) (*dto.UserResponse, error) {
	user, err := s.loadAuthorized(ctx, tc, userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !avatarExtensions[ext] {
		return nil, apperr.Validation("头像仅支持图片格式: " + ext)
	}

	key, err := s.store.Save("avatars", fh)
	if err != nil {
		return nil, apperr.Validation("文件保存失败: " + err.Error())
	}

	old := user.AvatarPath
	user.AvatarPath = &key
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.store.Remove(key)
		return nil, err
	}
	if old != nil {
		// 清理失败不影响本次上传
		if err := s.store.Remove(*old); err != nil {
			s.logger.Warn("旧头像清理失败", zap.String("path", *old), zap.Error(err))
		}
	}

	s.logger.Info("头像已更新",
		zap.String("user_id", userID),
		zap.String("operator", tc.UserID))
	return toUserResponse(user), nil
}

// SetActive 启用/停用账号
func (s *UserService) SetActive(ctx context.Context, tc *tenant.Context, userID string, active bool) error {
	user, err := s.loadAuthorized(ctx, tc, userID)
	if err != nil {
		return err
	}
	if user.UserID == tc.UserID {
		return apperr.Validation("不能停用自己的账号")
	}
	user.IsActive = active
	if err := s.repo.User.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("账号启停状态已变更",
		zap.String("user_id", userID),
		zap.Bool("active", active),
		zap.String("operator", tc.UserID))
	return nil
}

// CheckIDNumber 建号前预检证件号占用情况
func (s *UserService) CheckIDNumber(ctx context.Context, idNumber string) (bool, error) {
	exists, err := s.repo.User.ExistsByIDNumber(ctx, idNumber)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// ListSchools 全局学校汇总，仅超管
func (s *UserService) ListSchools(ctx context.Context, tc *tenant.Context) ([]dto.SchoolSummary, error) {
	if !tc.IsSuperAdmin {
		return nil, apperr.AccessDenied("仅超级管理员可查看所有学校")
	}
	return s.repo.User.ListSchools(ctx)
}

// ResetStudentPassword 管理员重置学生密码。
//
//	full      — 永久密码，仅限已缴清（paid）学生
//	temporary — 临时密码；partial 学生刷新访问期限，unpaid 学生不设期限
func (s *UserService) ResetStudentPassword(ctx context.Context, tc *tenant.Context, userID string, req *dto.ResetStudentPasswordRequest) (*dto.ResetPasswordResponse, error) {
	user, err := s.loadAuthorized(ctx, tc, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleStudent || user.Student == nil {
		return nil, apperr.NotFound("学生不存在")
	}
	student := user.Student

	if req.PasswordType == "full" && student.TuitionStatus != model.TuitionPaid {
		return nil, apperr.StateConflict("永久密码仅限学费缴清的学生")
	}
	if req.PasswordType == "temporary" && student.TuitionStatus == model.TuitionPaid {
		return nil, apperr.StateConflict("已缴清的学生应使用永久密码重置")
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.PasswordHash = string(hash)
	user.IsTemporaryPassword = req.PasswordType == "temporary"
	user.PasswordChangedAt = &now

	resp := &dto.ResetPasswordResponse{
		TempPassword: tempPassword,
		IsTemporary:  user.IsTemporaryPassword,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		// partial 学生发临时密码时刷新访问期限
		if req.PasswordType == "temporary" && student.TuitionStatus == model.TuitionPartial {
			expiry := now.AddDate(0, 0, s.cfg.Tuition.TempPasswordDays)
			student.TempPasswordExpiry = &expiry
			if err := tx.User.UpdateStudent(ctx, student); err != nil {
				return err
			}
			v := expiry.Format(time.RFC3339)
			resp.ExpiryDate = &v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("学生密码已重置",
		zap.String("user_id", userID),
		zap.String("password_type", req.PasswordType),
		zap.String("operator", tc.UserID))
	return resp, nil
}

// Analytics 管理端统计面板
func (s *UserService) Analytics(ctx context.Context, tc *tenant.Context) (*dto.AnalyticsResponse, error) {
	resp := &dto.AnalyticsResponse{}
	var err error

	if resp.TotalStudents, err = s.repo.User.CountByRole(ctx, tc, model.RoleStudent); err != nil {
		return nil, err
	}
	if resp.TotalTeachers, err = s.repo.User.CountByRole(ctx, tc, model.RoleTeacher); err != nil {
		return nil, err
	}
	if resp.TotalClasses, err = s.repo.Class.Count(ctx, tc); err != nil {
		return nil, err
	}
	if resp.TuitionPaid, err = s.repo.Tuition.CountStudentsByStatus(ctx, tc, model.TuitionPaid); err != nil {
		return nil, err
	}
	if resp.TuitionPartial, err = s.repo.Tuition.CountStudentsByStatus(ctx, tc, model.TuitionPartial); err != nil {
		return nil, err
	}
	if resp.TuitionUnpaid, err = s.repo.Tuition.CountStudentsByStatus(ctx, tc, model.TuitionUnpaid); err != nil {
		return nil, err
	}
	return resp, nil
}

// loadAuthorized 按 ID 取用户并做单实体租户鉴权
func (s *UserService) loadAuthorized(ctx context.Context, tc *tenant.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("用户不存在")
	}
	// 其他超管账号不受校级管理员管辖
	if user.Admin != nil && user.Admin.RoleLevel == model.RoleLevelSuperAdmin && !tc.IsSuperAdmin {
		return nil, apperr.AccessDenied("无权访问该用户")
	}
	if err := tenant.Authorize(tc, user.SchoolOrEmpty()); err != nil {
		return nil, err
	}
	return user, nil
}

// toUserResponse 用户模型转响应（脱敏）
func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:         u.UserID,
		IDNumber:   u.IDNumber,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		School:     u.School,
		IsActive:   u.IsActive,
		AvatarPath: u.AvatarPath,
	}
	if u.Student != nil {
		resp.Student = &dto.StudentProfile{
			StudentID:         u.Student.StudentID,
			Grade:             u.Student.Grade,
			Section:           u.Student.Section,
			TuitionStatus:     u.Student.TuitionStatus,
			CanChangePassword: u.Student.CanChangePassword,
		}
		if u.Student.TempPasswordExpiry != nil {
			v := u.Student.TempPasswordExpiry.Format(time.RFC3339)
			resp.Student.TempPasswordExpiry = &v
		}
	}
	if u.Teacher != nil {
		resp.Teacher = &dto.TeacherProfile{
			TeacherID: u.Teacher.TeacherID,
			Subject:   u.Teacher.Subject,
		}
	}
	if u.Admin != nil {
		resp.Admin = &dto.AdminProfile{
			AdminID:   u.Admin.AdminID,
			RoleLevel: u.Admin.RoleLevel,
		}
	}
	return resp
}

const tempPasswordCharset = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// generateTempPassword 生成随机临时密码（去除易混淆字符）
func generateTempPassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tempPasswordCharset[n.Int64()]
	}
	return string(buf), nil
}
