package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/dto"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
)

// 通知默认保留 30 天后过期（不物理删除，只从活跃查询排除）
const notificationTTL = 30 * 24 * time.Hour

// NotificationService 站内通知
type NotificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Push 给单个用户推送通知
func (s *NotificationService) Push(ctx context.Context, userID, title, message, icon string) error {
	expiresAt := time.Now().Add(notificationTTL)
	return s.repo.Notification.Create(ctx, &model.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Icon:      icon,
		ExpiresAt: &expiresAt,
	})
}

// PushBatch 批量推送（如发布考试成绩时逐学生通知）
func (s *NotificationService) PushBatch(ctx context.Context, userIDs []string, title, message, icon string) error {
	expiresAt := time.Now().Add(notificationTTL)
	notifications := make([]*model.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		notifications = append(notifications, &model.Notification{
			UserID:    uid,
			Title:     title,
			Message:   message,
			Icon:      icon,
			ExpiresAt: &expiresAt,
		})
	}
	return s.repo.Notification.CreateBatch(ctx, notifications)
}

// List 当前用户活跃通知
func (s *NotificationService) List(ctx context.Context, tc *tenant.Context, limit int) ([]dto.NotificationResponse, int64, error) {
	now := time.Now()
	notifications, err := s.repo.Notification.ListActive(ctx, tc.UserID, now, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.Notification.CountUnread(ctx, tc.UserID, now)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, dto.NotificationResponse{
			ID:        n.NotificationID,
			Title:     n.Title,
			Message:   n.Message,
			Icon:      n.Icon,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, unread, nil
}

// MarkRead 标记单条已读（仅本人）
func (s *NotificationService) MarkRead(ctx context.Context, tc *tenant.Context, notificationID string) error {
	return s.repo.Notification.MarkRead(ctx, tc.UserID, notificationID)
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(ctx context.Context, tc *tenant.Context) error {
	return s.repo.Notification.MarkAllRead(ctx, tc.UserID)
}
