package middleware

import (
	"time"

	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger replaces gin's default logger with structured zap output
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if identity := CurrentIdentity(c); identity != nil {
			fields = append(fields, zap.Uint("user_id", identity.ID))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Log.Error("Request failed", fields...)
		case status >= 400:
			logger.Log.Warn("Request rejected", fields...)
		default:
			logger.Log.Info("Request handled", fields...)
		}
	}
}
