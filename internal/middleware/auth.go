package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alfredmail-be/config"
	"alfredmail-be/internal/models"
	"alfredmail-be/internal/utils"
)

// SessionIDKey is the gin context key the auth middleware stores the
// authenticated session ID under.
const SessionIDKey = "sessionID"

// AuthMiddleware validates the Bearer token issued after the
// access-token gate and exposes the session ID to handlers.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header must be a Bearer token",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateSessionToken(tokenString, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

// SessionID pulls the authenticated session ID out of the gin context.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
