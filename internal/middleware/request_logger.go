package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/logger"
)

// RequestLogger logs all HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		duration := time.Since(start)
		logger.Info("HTTP request", []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.String("query", c.Request.URL.RawQuery),
			logger.Int("status", c.Writer.Status()),
			logger.String("duration", duration.String()),
			logger.Int("size", c.Writer.Size()),
			logger.String("ip", c.ClientIP()),
			logger.String("request_id", c.GetString(RequestIDKey)),
		})
	}
}

// ErrorLogger logs errors with context
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				logger.Error("Request error", []logger.Field{
					logger.String("path", c.Request.URL.Path),
					logger.String("method", c.Request.Method),
					logger.String("error", err.Error()),
				})
			}
		}
	}
}
