package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/apperr"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// Handler HTTP 处理层聚合
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Class        *ClassHandler
	Assignment   *AssignmentHandler
	Exam         *ExamHandler
	Material     *MaterialHandler
	Tuition      *TuitionHandler
	Notification *NotificationHandler
	Note         *NoteHandler
	Export       *ExportHandler
}

// NewHandler 创建处理层
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, logger),
		User:         NewUserHandler(svc.User, logger),
		Class:        NewClassHandler(svc.Class, logger),
		Assignment:   NewAssignmentHandler(svc.Assignment, svc.Submission, logger),
		Exam:         NewExamHandler(svc.Exam, logger),
		Material:     NewMaterialHandler(svc.Material, logger),
		Tuition:      NewTuitionHandler(svc.Tuition, logger),
		Notification: NewNotificationHandler(svc.Notification, logger),
		Note:         NewNoteHandler(svc.Note, logger),
		Export:       NewExportHandler(svc.Export, logger),
	}
}

// respondError 业务错误统一映射为 HTTP 响应。
// 未分类错误按内部错误处理，不向调用方泄露细节。
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindAccessDenied:
		response.Forbidden(c, 10003, err.Error())
	case apperr.KindNotFound:
		response.NotFound(c, 10004, err.Error())
	case apperr.KindValidation:
		response.BadRequest(c, 10001, err.Error())
	case apperr.KindStateConflict:
		response.Conflict(c, 10005, err.Error())
	case apperr.KindIntegrity:
		response.Conflict(c, 10006, err.Error())
	default:
		logger.Error("未分类的业务错误",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		response.InternalError(c)
	}
}
