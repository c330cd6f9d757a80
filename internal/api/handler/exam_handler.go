package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// ExamHandler 考试接口
type ExamHandler struct {
	svc    *service.ExamService
	logger *zap.Logger
}

// NewExamHandler 创建考试处理器
func NewExamHandler(svc *service.ExamService, logger *zap.Logger) *ExamHandler {
	return &ExamHandler{svc: svc, logger: logger}
}

// Create POST /api/v1/teacher/exams
func (h *ExamHandler) Create(c *gin.Context) {
	var req dto.CreateExamRequest
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

// Get GET /api/v1/teacher/exams/:id
func (h *ExamHandler) Get(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Get(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ListMine GET /api/v1/exams
func (h *ExamHandler) ListMine(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	exams, err := h.svc.ListMine(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, exams)
}

// Update PUT /api/v1/teacher/exams/:id
func (h *ExamHandler) Update(c *gin.Context) {
	var req dto.UpdateExamRequest
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

// Delete DELETE /api/v1/teacher/exams/:id
func (h *ExamHandler) Delete(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.Delete(c.Request.Context(), tc, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// ImportQuestions POST /api/v1/teacher/exams/:id/questions/import
func (h *ExamHandler) ImportQuestions(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.ImportQuestions(c.Request.Context(), tc, c.Param("id"), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Take POST /api/v1/student/exams/:id/take
func (h *ExamHandler) Take(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Take(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Submit POST /api/v1/student/exams/:id/submit
func (h *ExamHandler) Submit(c *gin.Context) {
	var req dto.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Submit(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// MyResults GET /api/v1/student/exam-results
func (h *ExamHandler) MyResults(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	results, err := h.svc.MyResults(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, results)
}

// ListAttempts GET /api/v1/teacher/exams/:id/attempts
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	attempts, err := h.svc.ListAttempts(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, attempts)
}

// GradeAttempt POST /api/v1/teacher/attempts/:id/grade
func (h *ExamHandler) GradeAttempt(c *gin.Context) {
	var req dto.GradeAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.GradeAttempt(c.Request.Context(), tc, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// PublishResults POST /api/v1/teacher/exams/:id/publish
func (h *ExamHandler) PublishResults(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.PublishResults(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}
