package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/service"
)

// ExportHandler 报表导出接口
type ExportHandler struct {
	svc    *service.ExportService
	logger *zap.Logger
}

// NewExportHandler 创建导出处理器
func NewExportHandler(svc *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// TuitionReport GET /api/v1/admin/tuition/export
func (h *ExportHandler) TuitionReport(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	buf, filename, err := h.svc.TuitionReport(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ExamCalendar GET /api/v1/exams/calendar.ics
func (h *ExportHandler) ExamCalendar(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	ics, filename, err := h.svc.ExamCalendar(c.Request.Context(), tc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
