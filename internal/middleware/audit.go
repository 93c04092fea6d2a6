package middleware

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/convoqa/backend/internal/services"
	"github.com/gin-gonic/gin"
)

var sensitiveFieldPattern = regexp.MustCompile(`("(?:password|token|secret)"\s*:\s*)"[^"]*"`)

// AuditLog records write operations (POST/PUT/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (up to 2000 chars for Extra)
		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = sensitiveFieldPattern.ReplaceAllString(bodySnippet, `$1"***"`)
		}

		c.Next()

		userID := GetUserID(c)
		username := GetUsername(c)
		ip := c.ClientIP()
		userAgent := c.Request.UserAgent()
		status := c.Writer.Status()

		module := parseModule(c.FullPath())
		message := fmt.Sprintf("%s %s %s -> %d", username, method, c.Request.URL.Path, status)

		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		services.LogInfo(module, strings.ToLower(method), message, uid, ip, userAgent, map[string]interface{}{
			"method": method,
			"path":   c.Request.URL.Path,
			"status": status,
			"body":   bodySnippet,
			"audit":  true,
		})
	}
}

// parseModule derives a module name from the matched route, e.g.
// /api/feedback/:id -> feedback.
func parseModule(fullPath string) string {
	parts := strings.Split(strings.TrimPrefix(fullPath, "/api/"), "/")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "api"
}
