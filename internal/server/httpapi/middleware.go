package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
	"github.com/dmitrijs2005/coursekeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const authorIDKey = "author_id"

// requestLogger writes one line per request. 5xx answers are logged at
// ERROR together with the handler's error.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if id := c.GetString(authorIDKey); id != "" {
			args = append(args, authorIDKey, id)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			args = append(args, "error", c.Errors.String())
			log.Error(ctx, "request failed", args...)
		case status >= 400:
			log.Warn(ctx, "request rejected", args...)
		default:
			log.Info(ctx, "request", args...)
		}
	}
}

// authRequired accepts "Authorization: Bearer <jwt>" signed with secret and
// stores the token's author id under authorIDKey.
func authRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			writeError(c, common.ErrUnauthorized)
			return
		}

		authorID, err := auth.GetAuthorIDFromToken(strings.TrimSpace(token), secret)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(authorIDKey, authorID)
		c.Next()
	}
}
