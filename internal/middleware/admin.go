package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	adminKey     string
	adminKeyOnce sync.Once
)

// getAdminKey returns the configured admin key, loading it once from the
// environment. Empty means admin endpoints are open (local dev).
func getAdminKey() string {
	adminKeyOnce.Do(func() {
		adminKey = os.Getenv("ADMIN_KEY")
	})
	return adminKey
}

// bearerToken extracts the token from an "Authorization: Bearer <key>" header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AdminKeyAuth protects operational endpoints with a shared key.
// When ADMIN_KEY is unset all requests pass, so local development needs no
// setup. The comparison is constant time.
func AdminKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getAdminKey()
		if key == "" {
			c.Next()
			return
		}

		provided, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Se requiere autorización de administrador",
				"code":  "AUTH_REQUIRED",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Clave de administrador inválida",
				"code":  "AUTH_INVALID_KEY",
			})
			return
		}

		c.Next()
	}
}
