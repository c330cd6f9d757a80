package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/api/handler"
	"github.com/Danosky8082/EdTech/internal/api/middleware"
	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/pkg/jwt"
	"github.com/Danosky8082/EdTech/pkg/redis"
)

// Setup 组装路由。
// 认证链: JWTAuth（签名/黑名单）→ SchoolContext（数据库新鲜身份）→ RoleAuth（角色门禁）。
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	repo *repository.Repository,
	jwtManager *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Security(),
		middleware.CORS(&cfg.Server.CORS),
		// 上传上限之外留 1MB 给其余表单字段
		middleware.BodyLimit((int64(cfg.Upload.MaxSizeMB)+1)<<20),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// ── 公开接口 ──
	loginLimit := middleware.RateLimit(rdb, cfg.Server.LoginRateLimit, time.Minute)
	api.POST("/auth/login", loginLimit, h.Auth.Login)
	api.POST("/auth/refresh", loginLimit, h.Auth.Refresh)

	// ── 受保护接口 ──
	authed := api.Group("")
	authed.Use(
		middleware.JWTAuth(jwtManager, rdb, logger),
		middleware.SchoolContext(repo, logger),
	)
	{
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.GET("/auth/me", h.Auth.Me)
		authed.POST("/auth/change-password", h.Auth.ChangePassword)

		authed.GET("/notifications", h.Notification.List)
		authed.PATCH("/notifications/read-all", h.Notification.MarkAllRead)
		authed.PATCH("/notifications/:id/read", h.Notification.MarkRead)

		authed.GET("/classes/:id", h.Class.Get)
		authed.GET("/classes/:id/roster", h.Class.Roster)
		authed.GET("/classes/:id/assignments", h.Assignment.ListByClass)
		authed.GET("/assignments", h.Assignment.ListMine)
		authed.GET("/assignments/:id", h.Assignment.Get)
		authed.GET("/submissions/:id/file", h.Assignment.DownloadSubmission)
		authed.GET("/exams", h.Exam.ListMine)
		authed.GET("/exams/calendar.ics", h.Export.ExamCalendar)
		authed.GET("/materials", h.Material.ListMine)
		authed.GET("/materials/:id/download", h.Material.Download)
	}

	// ── 管理端 ──
	admin := authed.Group("/admin")
	admin.Use(middleware.RoleAuth(model.RoleAdmin))
	{
		admin.POST("/users", h.User.Create)
		admin.GET("/users", h.User.List)
		admin.GET("/users/check-id-number", h.User.CheckIDNumber)
		admin.GET("/users/:id", h.User.Get)
		admin.PUT("/users/:id", h.User.Update)
		admin.POST("/users/:id/avatar", h.User.UploadAvatar)
		admin.PATCH("/users/:id/activate", h.User.Activate)
		admin.PATCH("/users/:id/deactivate", h.User.Deactivate)
		admin.GET("/schools", h.User.ListSchools)
		admin.GET("/analytics", h.User.Analytics)

		admin.POST("/students/:id/reset-password", h.User.ResetStudentPassword)
		admin.GET("/students/:id/tuition", h.Tuition.GetState)
		admin.PATCH("/students/:id/tuition", h.Tuition.UpdateStatus)
		admin.POST("/students/:id/extend-access", h.Tuition.ExtendAccess)
		admin.POST("/tuition/payments", h.Tuition.RecordPayment)
		admin.GET("/tuition/expired", h.Tuition.ExpiryReport)
		admin.GET("/tuition/export", h.Export.TuitionReport)

		admin.POST("/classes", h.Class.Create)
		admin.GET("/classes", h.Class.List)
		admin.PUT("/classes/:id", h.Class.Update)
		admin.DELETE("/classes/:id", h.Class.Delete)
		admin.POST("/classes/:id/students", h.Class.Enroll)
		admin.DELETE("/classes/:id/students/:studentId", h.Class.Unenroll)
	}

	// ── 教师端 ──
	teacher := authed.Group("/teacher")
	teacher.Use(middleware.RoleAuth(model.RoleTeacher, model.RoleAdmin))
	{
		teacher.GET("/dashboard", h.Class.Dashboard)
		teacher.GET("/classes", h.Class.ListMine)

		teacher.POST("/assignments", h.Assignment.Create)
		teacher.PUT("/assignments/:id", h.Assignment.Update)
		teacher.DELETE("/assignments/:id", h.Assignment.Delete)
		teacher.GET("/assignments/:id/submissions", h.Assignment.ListSubmissions)
		teacher.POST("/submissions/:id/grade", h.Assignment.GradeSubmission)

		teacher.POST("/exams", h.Exam.Create)
		teacher.GET("/exams/:id", h.Exam.Get)
		teacher.PUT("/exams/:id", h.Exam.Update)
		teacher.DELETE("/exams/:id", h.Exam.Delete)
		teacher.POST("/exams/:id/questions/import", h.Exam.ImportQuestions)
		teacher.GET("/exams/:id/attempts", h.Exam.ListAttempts)
		teacher.POST("/exams/:id/publish", h.Exam.PublishResults)
		teacher.POST("/attempts/:id/grade", h.Exam.GradeAttempt)

		teacher.POST("/materials", h.Material.Upload)
		teacher.DELETE("/materials/:id", h.Material.Delete)
	}

	// ── 学生端 ──
	student := authed.Group("/student")
	student.Use(middleware.RoleAuth(model.RoleStudent))
	{
		student.GET("/classes", h.Class.ListEnrolled)
		student.GET("/submissions", h.Assignment.ListMySubmissions)
		student.POST("/assignments/:id/submit", h.Assignment.SubmitText)
		student.POST("/assignments/:id/submit-file", h.Assignment.SubmitFile)
		student.POST("/exams/:id/take", h.Exam.Take)
		student.POST("/exams/:id/submit", h.Exam.Submit)
		student.GET("/exam-results", h.Exam.MyResults)

		student.POST("/notes", h.Note.Save)
		student.GET("/notes", h.Note.List)
		student.PUT("/notes/:id", h.Note.Update)
		student.DELETE("/notes/:id", h.Note.Delete)
	}

	return r
}
