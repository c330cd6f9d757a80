package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxKeyRequestID 请求 ID 上下文键
const CtxKeyRequestID = "request_id"

// HeaderRequestID 请求 ID 响应头
const HeaderRequestID = "X-Request-ID"

// RequestID 请求 ID 中间件：透传或生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(CtxKeyRequestID, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}
