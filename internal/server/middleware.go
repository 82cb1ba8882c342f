package server

import (
	"time"

	"auction-service/internal/identity"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":    c.Request.Method,
		"path":      c.FullPath(),
		"status":    c.Writer.Status(),
		"latency":   time.Since(start).String(),
		"client_ip": c.ClientIP(),
	}
	if id, ok := identity.FromContext(c); ok {
		fields["user_id"] = id.UserID
	}
	if fields["path"] == "" {
		fields["path"] = c.Request.URL.Path
	}

	switch status := c.Writer.Status(); {
	case status >= 500:
		utils.Error("HTTP Request", fields)
	default:
		utils.Info("HTTP Request", fields)
	}
}
