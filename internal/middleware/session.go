package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	sessionName   = "explorador_session"
	explorerIDKey = "explorer_id"
	sessionMaxAge = 30 * 24 * 60 * 60 // 30 days, explorers come back slowly
)

// Sessions returns the cookie-backed session middleware. The secret signs
// the cookie; rotating it invalidates every live session.
func Sessions(secret string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionName, store)
}

// RequireExplorer rejects requests without a logged-in explorer.
func RequireExplorer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ExplorerID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Debes registrarte o iniciar sesión primero",
				"code":  "AUTH_REQUIRED",
			})
			return
		}
		c.Next()
	}
}

// ExplorerID returns the logged-in explorer's ID from the session.
func ExplorerID(c *gin.Context) (uint, bool) {
	v := sessions.Default(c).Get(explorerIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// SetExplorerID stores the explorer's ID in the session.
func SetExplorerID(c *gin.Context, id uint) error {
	session := sessions.Default(c)
	session.Set(explorerIDKey, id)
	return session.Save()
}

// ClearExplorer removes the session, logging the explorer out.
func ClearExplorer(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
