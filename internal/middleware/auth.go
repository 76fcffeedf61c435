package middleware

import (
	"net/http"

	"ai-risk-registry/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionUserID = "user_id"
	SessionRole   = "role"
)

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Log in first.")
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := sessions.Default(c)
		roleStr, ok := sess.Get(SessionRole).(string)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Log in first.")
			return
		}

		if _, ok := roleSet[models.UserRole(roleStr)]; !ok {
			abortJSON(c, http.StatusForbidden, "FORBIDDEN", "Your role "+roleStr+" may not perform this action.")
			return
		}
		c.Next()
	}
}
