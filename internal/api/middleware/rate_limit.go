package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Danosky8082/EdTech/pkg/redis"
	"github.com/Danosky8082/EdTech/pkg/response"
)

// RateLimit 基于 Redis 计数窗口的速率限制中间件，按 客户端IP+路由 限流。
// rdb 为 nil 或 Redis 出错时降级放行（与 JWTAuth 黑名单策略一致）
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10007, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
