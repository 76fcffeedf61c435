package middleware

import (
	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "CurrentUser"

// InjectUser loads the session user and hands it to the service layer as the actor.
func InjectUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uid, ok := sess.Get(SessionUserID).(uint); ok && uid > 0 {
			user, err := users.GetByID(c.Request.Context(), uid)
			if err == nil {
				c.Set(currentUserKey, user)
				ctx := service.WithActor(c.Request.Context(), service.Actor{UserID: user.ID, Username: user.Username})
				c.Request = c.Request.WithContext(ctx)
			}
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
