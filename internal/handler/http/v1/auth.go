package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/firechain/internal/identity"
)

const actorKey = "actor"

// AuthMiddleware - middleware для аутентификации по API-ключу или JWT.
// Опознанный участник кладется в контекст gin.
func AuthMiddleware(provider identity.Provider, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-API-Key")
		if token == "" {
			// Проверяем также заголовок Authorization: Bearer
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			}
		}

		actor, err := provider.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, identity.ErrMissingToken):
			log.Warn("Token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key or bearer token required"})
			return
		case errors.Is(err, identity.ErrInvalidToken):
			log.WithError(err).Warn("Invalid token provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		case err != nil:
			log.WithError(err).Error("Identity provider failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom возвращает участника, сохраненного AuthMiddleware
func actorFrom(c *gin.Context) string {
	return c.GetString(actorKey)
}
