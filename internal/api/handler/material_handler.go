package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// MaterialHandler 课程资料接口
type MaterialHandler struct {
	svc    *service.MaterialService
	logger *zap.Logger
}

// NewMaterialHandler 创建资料处理器
func NewMaterialHandler(svc *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{svc: svc, logger: logger}
}

// Upload POST /api/v1/teacher/materials
func (h *MaterialHandler) Upload(c *gin.Context) {
	var req dto.UploadMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数错误")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	tc := middleware.MustGetTenant(c)
	resp, err := h.svc.Upload(c.Request.Context(), tc, &req, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, resp)
}

// ListMine GET /api/v1/materials
func (h *MaterialHandler) ListMine(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	materials, err := h.svc.ListMine(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, materials)
}

// Download GET /api/v1/materials/:id/download
func (h *MaterialHandler) Download(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	path, title, err := h.svc.Download(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.FileAttachment(path, title)
}

// Delete DELETE /api/v1/teacher/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.Delete(c.Request.Context(), tc, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}
