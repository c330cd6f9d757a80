package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// AssignmentHandler 作业与提交接口
type AssignmentHandler struct {
	svc        *service.AssignmentService
	submission *service.SubmissionService
	logger     *zap.Logger
}

// NewAssignmentHandler 创建作业处理器
func NewAssignmentHandler(svc *service.AssignmentService, submission *service.SubmissionService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, submission: submission, logger: logger}
}

// Create POST /api/v1/teacher/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
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

// Get GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Get(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ListByClass GET /api/v1/classes/:id/assignments
func (h *AssignmentHandler) ListByClass(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	assignments, err := h.svc.ListByClass(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, assignments)
}

// ListMine GET /api/v1/assignments
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	assignments, err := h.svc.ListMine(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, assignments)
}

// Update PUT /api/v1/teacher/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
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

// Delete DELETE /api/v1/teacher/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.Delete(c.Request.Context(), tc, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// ── 提交 ──

// SubmitText POST /api/v1/student/assignments/:id/submit
func (h *AssignmentHandler) SubmitText(c *gin.Context) {
	var req dto.SubmitTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.submission.SubmitText(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// SubmitFile POST /api/v1/student/assignments/:id/submit-file
func (h *AssignmentHandler) SubmitFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.submission.SubmitFile(c.Request.Context(), tc, c.Param("id"), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ListSubmissions GET /api/v1/teacher/assignments/:id/submissions
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	submissions, err := h.submission.ListByAssignment(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, submissions)
}

// ListMySubmissions GET /api/v1/student/submissions
func (h *AssignmentHandler) ListMySubmissions(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	submissions, err := h.submission.ListMine(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, submissions)
}

// GradeSubmission POST /api/v1/teacher/submissions/:id/grade
func (h *AssignmentHandler) GradeSubmission(c *gin.Context) {
	var req dto.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.submission.Grade(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// DownloadSubmission GET /api/v1/submissions/:id/file
func (h *AssignmentHandler) DownloadSubmission(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	path, err := h.submission.OpenFile(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.File(path)
}
