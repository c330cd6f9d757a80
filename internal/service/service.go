package service

import (
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/pkg/filestore"
	"github.com/Danosky8082/EdTech/pkg/jwt"
	"github.com/Danosky8082/EdTech/pkg/redis"
)

// Service 业务层聚合
type Service struct {
	Auth         *AuthService
	User         *UserService
	Class        *ClassService
	Assignment   *AssignmentService
	Submission   *SubmissionService
	Exam         *ExamService
	Material     *MaterialService
	Tuition      *TuitionService
	Notification *NotificationService
	Note         *NoteService
	Export       *ExportService
}

// NewService 创建业务层
// rdb 可为 nil（Redis 不可用时降级运行，登出黑名单失效）
func NewService(
	repo *repository.Repository,
	cfg *config.Config,
	jwtManager *jwt.Manager,
	rdb *redis.Client,
	store *filestore.Store,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, logger)
	tuition := NewTuitionService(repo, cfg, notification, logger)

	return &Service{
		Auth:         NewAuthService(repo, cfg, jwtManager, rdb, logger),
		User:         NewUserService(repo, cfg, tuition, store, logger),
		Class:        NewClassService(repo, logger),
		Assignment:   NewAssignmentService(repo, logger),
		Submission:   NewSubmissionService(repo, store, notification, logger),
		Exam:         NewExamService(repo, notification, logger),
		Material:     NewMaterialService(repo, store, logger),
		Tuition:      tuition,
		Notification: notification,
		Note:         NewNoteService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
