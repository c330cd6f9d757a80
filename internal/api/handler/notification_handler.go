package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// NotificationHandler 站内通知接口
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// List GET /api/v1/notifications?limit=50
func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	tc := middleware.MustGetTenant(c)
	notifications, unread, err := h.svc.List(c.Request.Context(), tc, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.MarkRead(c.Request.Context(), tc, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// MarkAllRead PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	tc := middleware.MustGetTenant(c)
	if err := h.svc.MarkAllRead(c.Request.Context(), tc); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}
