package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// NoteHandler 学生笔记接口
type NoteHandler struct {
	svc    *service.NoteService
	logger *zap.Logger
}

// NewNoteHandler 创建笔记处理器
func NewNoteHandler(svc *service.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{svc: svc, logger: logger}
}

// Save POST /api/v1/student/notes
func (h *NoteHandler) Save(c *gin.Context) {
	var req dto.SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Save(c.Request.Context(), tc, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, resp)
}

// List GET /api/v1/student/notes?class_id=xxx
func (h *NoteHandler) List(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	notes, err := h.svc.List(c.Request.Context(), tc, c.Query("class_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, notes)
}

// Update PUT /api/v1/student/notes/:id
func (h *NoteHandler) Update(c *gin.Context) {
	var req dto.UpdateNoteRequest
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

// Delete DELETE /api/v1/student/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.Delete(c.Request.Context(), tc, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}
