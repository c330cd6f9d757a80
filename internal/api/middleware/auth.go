package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/pkg/jwt"
	"github.com/Danosky8082/EdTech/pkg/redis"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// Gin 上下文键
const (
	CtxKeyUserID = "user_id"
	CtxKeyClaims = "claims"
	CtxKeyTenant = "tenant_ctx"
)

// JWTAuth JWT 认证中间件：校验 Access Token 与黑名单。
// rdb 可为 nil（Redis 降级时跳过黑名单检查）。
func JWTAuth(jwtManager *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证信息")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, 10002, "认证信息格式错误")
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "认证已过期或无效")
			c.Abort()
			return
		}
		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "凭证类型错误")
			c.Abort()
			return
		}

		if rdb != nil {
			blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("黑名单查询失败", zap.Error(err))
			} else if blacklisted {
				response.Unauthorized(c, 10002, "凭证已失效，请重新登录")
				c.Abort()
				return
			}
		}

		c.Set(CtxKeyUserID, claims.UserID)
		c.Set(CtxKeyClaims, claims)
		c.Next()
	}
}

// RoleAuth 角色门禁中间件，依赖 SchoolContext 解析出的安全上下文。
// 放在 SchoolContext 之后使用；角色以数据库新鲜值为准，不信任 Token。
func RoleAuth(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := MustGetTenant(c)
		for _, role := range roles {
			if tc.Role == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, 10003, "当前角色无权访问")
		c.Abort()
	}
}
