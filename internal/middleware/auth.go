package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civilink/civilink-backend/internal/logger"
)

// AuthMiddleware enforces role access on admin routes. Authentication itself
// happens at the gateway, which strips and re-sets X-Gateway-Role on every
// request; this service only trusts that header.
type AuthMiddleware struct {
	log *logger.Logger
}

func NewAuthMiddleware(log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware")}
}

func (am *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetHeader("X-Gateway-Role")
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing role"})
			return
		}
		if _, ok := allowed[role]; !ok {
			am.log.Debug("Role rejected", "role", role, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
