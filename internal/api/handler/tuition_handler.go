package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// TuitionHandler 学费接口（管理端）
type TuitionHandler struct {
	svc    *service.TuitionService
	logger *zap.Logger
}

// NewTuitionHandler 创建学费处理器
func NewTuitionHandler(svc *service.TuitionService, logger *zap.Logger) *TuitionHandler {
	return &TuitionHandler{svc: svc, logger: logger}
}

// UpdateStatus PATCH /api/v1/admin/students/:id/tuition
func (h *TuitionHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTuitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.UpdateStatus(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// RecordPayment POST /api/v1/admin/tuition/payments
func (h *TuitionHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.RecordPayment(c.Request.Context(), tc, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, resp)
}

// ExtendAccess POST /api/v1/admin/students/:id/extend-access
func (h *TuitionHandler) ExtendAccess(c *gin.Context) {
	var req dto.ExtendAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.ExtendAccess(c.Request.Context(), tc, c.Param("id"), req.Days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// GetState GET /api/v1/admin/students/:id/tuition
func (h *TuitionHandler) GetState(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.GetState(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ExpiryReport GET /api/v1/admin/tuition/expired
func (h *TuitionHandler) ExpiryReport(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	report, err := h.svc.ExpiryReport(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, report)
}
