package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/internal/model"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/tenant"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// SchoolContext 每请求从数据库新鲜解析安全上下文（租户归属）。
// 放在 JWTAuth 之后；用户被删除、停用或临时访问过期的会话在此截断。
func SchoolContext(repo *repository.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxKeyUserID)
		if userID == "" {
			response.Unauthorized(c, 10002, "认证信息缺失")
			c.Abort()
			return
		}

		user, err := repo.User.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Error("解析用户身份失败", zap.String("user_id", userID), zap.Error(err))
			response.InternalError(c)
			c.Abort()
			return
		}
		if user == nil || !user.IsActive {
			response.Unauthorized(c, 10002, "账号不可用")
			c.Abort()
			return
		}
		if user.Role == model.RoleStudent && user.Student != nil && user.Student.AccessExpired(time.Now()) {
			response.Unauthorized(c, 10002, "临时访问已过期，请联系学校财务处")
			c.Abort()
			return
		}

		c.Set(CtxKeyTenant, tenant.Resolve(user))
		c.Next()
	}
}

// MustGetTenant 取安全上下文；仅在 SchoolContext 之后的处理链中调用
func MustGetTenant(c *gin.Context) *tenant.Context {
	v, ok := c.Get(CtxKeyTenant)
	if !ok {
		panic("tenant context 未初始化，SchoolContext 中间件未生效")
	}
	return v.(*tenant.Context)
}
