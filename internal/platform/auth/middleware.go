package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"adda-backend/internal/platform/logger"
)

const (
	CtxUserIDKey     = "user_id"
	sessionUserIDKey = "user_id"
)

// RequireAuth accepts "Authorization: Bearer <token>" or, failing that, the
// cookie session written at login. It stores the user id on the gin context.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUser(c, parser)
		if !ok {
			userID, ok = sessionUser(c)
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "sign in required"))
			return
		}

		c.Set(CtxUserIDKey, userID)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserID returns the signed-in user set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// TargetUserID reads the ":id" path parameter; "me" or an empty value means
// the signed-in user.
func TargetUserID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || id == "me" {
		return UserID(c)
	}
	return id
}

func bearerUser(c *gin.Context, parser TokenParser) (string, bool) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tokenStr := strings.TrimSpace(parts[1])
	if tokenStr == "" {
		return "", false
	}
	sub, err := parser.ParseToken(tokenStr)
	if err != nil {
		return "", false
	}
	return sub, true
}

func sessionUser(c *gin.Context) (string, bool) {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return "", false
	}
	v, ok := sessions.Default(c).Get(sessionUserIDKey).(string)
	return v, ok && v != ""
}
