package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/response"
)

const identityKey = "identity"

// NewProvider picks the provider named by AUTH_MODE.
func NewProvider(cfg *config.Config, tokens *TokenManager, logger internal.Logger) Provider {
	if cfg.AuthMode == "remote" {
		return NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	}
	return NewLocalAuthProvider(tokens, logger)
}

func AuthMiddleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			id, err := provider.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set(identityKey, id)
				c.Next()
				return
			}
			if !errors.Is(err, internal.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.NewAppError(http.StatusServiceUnavailable, "authentication unavailable"))
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewAppError(http.StatusUnauthorized, "unauthorized"))
	}
}

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}
