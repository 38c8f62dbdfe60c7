package middleware

import (
	"net/http"
	"strings"

	"buspass/internal/domain"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

const requestContextKey = "request_context"

// RequireAuth rejects requests without a valid bearer token and stores the caller.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		rc, err := services.ParseToken(secret, strings.TrimSpace(raw))
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// RequireRoles allows only callers whose role is listed. It must run after RequireAuth.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		rc, ok := GetRequestContext(c)
		if !ok || rc.Role == "" {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(rc.Role))]; !ok {
			abort(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the authenticated caller set by RequireAuth.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	if c == nil {
		return domain.RequestContext{}, false
	}
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
