package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// UserHandler 用户管理接口（管理端）
type UserHandler struct {
	svc    *service.UserService
	logger *zap.Logger
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Create POST /api/v1/admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Create(c.Request.Context(), tc, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, resp)
}

// List GET /api/v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "查询参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	users, total, err := h.svc.List(c.Request.Context(), tc, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/v1/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Get(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Update PUT /api/v1/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Update(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// UploadAvatar POST /api/v1/admin/users/:id/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, 10001, "缺少头像文件")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.UploadAvatar(c.Request.Context(), tc, c.Param("id"), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Activate PATCH /api/v1/admin/users/:id/activate
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate PATCH /api/v1/admin/users/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.SetActive(c.Request.Context(), tc, c.Param("id"), active); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// CheckIDNumber GET /api/v1/admin/users/check-id-number?id_number=xxx
func (h *UserHandler) CheckIDNumber(c *gin.Context) {
	idNumber := c.Query("id_number")
	if idNumber == "" {
		response.BadRequest(c, 10001, "缺少 id_number 参数")
		return
	}
	available, err := h.svc.CheckIDNumber(c.Request.Context(), idNumber)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"available": available})
}

// ListSchools GET /api/v1/admin/schools
func (h *UserHandler) ListSchools(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	schools, err := h.svc.ListSchools(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, schools)
}

// ResetStudentPassword POST /api/v1/admin/students/:id/reset-password
func (h *UserHandler) ResetStudentPassword(c *gin.Context) {
	var req dto.ResetStudentPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.ResetStudentPassword(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Analytics GET /api/v1/admin/analytics
func (h *UserHandler) Analytics(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Analytics(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}
