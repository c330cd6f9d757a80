package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// ClassHandler 班级与选课接口
type ClassHandler struct {
	svc    *service.ClassService
	logger *zap.Logger
}

// NewClassHandler 创建班级处理器
func NewClassHandler(svc *service.ClassService, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{svc: svc, logger: logger}
}

// Create POST /api/v1/admin/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
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

// List GET /api/v1/admin/classes
func (h *ClassHandler) List(c *gin.Context) {
	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "查询参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	classes, total, err := h.svc.List(c.Request.Context(), tc, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OKPage(c, classes, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Get(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ListMine GET /api/v1/teacher/classes
func (h *ClassHandler) ListMine(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	classes, err := h.svc.ListMine(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, classes)
}

// Dashboard GET /api/v1/teacher/dashboard
func (h *ClassHandler) Dashboard(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Dashboard(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ListEnrolled GET /api/v1/student/classes
func (h *ClassHandler) ListEnrolled(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	classes, err := h.svc.ListEnrolled(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, classes)
}

// Update PUT /api/v1/admin/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpdateClassRequest
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

// Delete DELETE /api/v1/admin/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.Delete(c.Request.Context(), tc, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// Enroll POST /api/v1/admin/classes/:id/students
func (h *ClassHandler) Enroll(c *gin.Context) {
	var req dto.EnrollStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	result, err := h.svc.Enroll(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Unenroll DELETE /api/v1/admin/classes/:id/students/:studentId
func (h *ClassHandler) Unenroll(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.Unenroll(c.Request.Context(), tc, c.Param("id"), c.Param("studentId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// Roster GET /api/v1/classes/:id/roster
func (h *ClassHandler) Roster(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	roster, err := h.svc.Roster(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, roster)
}
