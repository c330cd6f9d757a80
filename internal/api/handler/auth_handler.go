package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/jwt"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// AuthHandler 认证接口
type AuthHandler struct {
	svc    *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		// 登录失败统一按 401 返回，不区分账号不存在与密码错误
		if apperr.IsAccessDenied(err) {
			response.Unauthorized(c, 10002, err.Error())
			return
		}
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Refresh POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if apperr.IsAccessDenied(err) {
			response.Unauthorized(c, 10002, err.Error())
			return
		}
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, ok := c.Get(middleware.CtxKeyClaims)
	if !ok {
		response.Unauthorized(c, 10002, "认证信息缺失")
		return
	}
	if err := h.svc.Logout(c.Request.Context(), v.(*jwt.Claims)); err != nil {
		h.logger.Warn("登出处理失败", zap.Error(err))
	}
	response.OK(c, nil)
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Me(c.Request.Context(), tc.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ChangePassword POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	if err := h.svc.ChangePassword(c.Request.Context(), tc.UserID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}
