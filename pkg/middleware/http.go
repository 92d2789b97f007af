package middleware

import (
	"net/http"
	"time"

	"github.com/Abhi39054/goessential/pkg/logger"
	"github.com/gin-gonic/gin"
)

// HTTPLogging 返回一个 HTTP 请求日志中间件。
// 每个请求在 stdin（摄入）日志中记录一条，包含 method、path、status、latency 等信息，
// 同时把 Logger 注入请求的 context。
func HTTPLogging(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))

		// 处理请求
		c.Next()

		latency := time.Since(start)

		l.Ingress("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// HTTPRecovery 是一个简单的 panic 恢复中间件。
// 发生 panic 时返回 500，并把堆栈写入 error 日志。
func HTTPRecovery(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				l.Exception("panic recovered in http handler", "panic", r)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": "internal server error",
				})
			}
		}()

		c.Next()
	}
}
