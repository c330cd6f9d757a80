package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/jwt"
	"github.com/Danosky8082/EdTech/pkg/redis"
)

// AuthService 认证服务
type AuthService struct {
	repo       *repository.Repository
	cfg        *config.Config
	jwtManager *jwt.Manager
	rdb        *redis.Client
	logger     *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(repo *repository.Repository, cfg *config.Config, jwtManager *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, cfg: cfg, jwtManager: jwtManager, rdb: rdb, logger: logger}
}

// Login 学号/工号 + 密码登录。
// 凭证错误、账号停用、学生临时访问过期均拒绝登录；
// 对外统一返回"账号或密码错误"，不泄露账号是否存在。
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByIDNumber(ctx, req.IDNumber)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.AccessDenied("账号或密码错误")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("登录密码校验失败", zap.String("id_number", req.IDNumber))
		return nil, apperr.AccessDenied("账号或密码错误")
	}

	if !user.IsActive {
		return nil, apperr.AccessDenied("账号已被停用，请联系管理员")
	}

	// 学生临时访问过期后整体禁止登录，直到管理员延期或确认缴清
	if user.Role == model.RoleStudent && user.Student != nil && user.Student.AccessExpired(time.Now()) {
		return nil, apperr.AccessDenied("临时访问已过期，请联系学校财务处")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.UserID, user.Role, req.RememberMe)
	if err != nil {
		return nil, err
	}

	s.logger.Info("用户登录成功",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role))

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// Refresh 用 Refresh Token 换发新 Token 对。
// 换发前重新核验用户状态，停用或访问过期的会话在此被截断。
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, apperr.AccessDenied("刷新凭证无效")
	}
	if claims.TokenType != "refresh" {
		return nil, apperr.AccessDenied("刷新凭证无效")
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单查询失败", zap.Error(err))
		} else if blacklisted {
			return nil, apperr.AccessDenied("刷新凭证已失效")
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperr.AccessDenied("账号不可用")
	}
	if user.Role == model.RoleStudent && user.Student != nil && user.Student.AccessExpired(time.Now()) {
		return nil, apperr.AccessDenied("临时访问已过期，请联系学校财务处")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(user.UserID, user.Role, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// 旧 Refresh Token 作废，防止重放
	if s.rdb != nil && claims.ExpiresAt != nil {
		if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("旧刷新凭证拉黑失败", zap.Error(err))
		}
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// Logout 登出：将当前 Access Token 加入黑名单。
// Redis 不可用时降级为无操作（Token 自然过期）。
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// Me 当前用户信息
func (s *AuthService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("用户不存在")
	}
	return toUserResponse(user), nil
}

// ChangePassword 用户修改自己的密码。
// 学生受学费门禁约束：仅 paid（can_change_password）允许；
// partial 即便在临时访问期内也不允许，避免临时密码被固化。
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("用户不存在")
	}

	if user.Role == model.RoleStudent && user.Student != nil {
		if user.Student.AccessExpired(time.Now()) {
			return apperr.AccessDenied("临时访问已过期，请联系学校财务处")
		}
		if !user.Student.CanChangePassword {
			return apperr.AccessDenied("学费未缴清，暂时无法修改密码")
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperr.Validation("原密码错误")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	user.PasswordHash = string(hash)
	user.IsTemporaryPassword = false
	user.PasswordChangedAt = &now

	if err := s.repo.User.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("用户已修改密码", zap.String("user_id", userID))
	return nil
}
