package middleware

import (
	"thriftit/backend/pkg/errors"
	"thriftit/backend/pkg/jwt"
	"thriftit/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware checks that the request has a valid token and adds
// claims to the context
func JWTAuthMiddleware(jwtService *jwt.Service, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.Error(errors.NewUnauthorizedError("AUTH_REQUIRED", "Authorization header is required"))
			c.Abort()
			return
		}

		// Strip "Bearer " prefix if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			logger.Warn("invalid session token", "error", err.Error())
			c.Error(errors.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("userId", claims.UserID)
		c.Set("studentId", claims.StudentID)

		c.Next()
	}
}

// OptionalJWTAuthMiddleware adds claims to the context when the request
// carries a valid token, and lets the request through either way. Used on
// public reads that personalise their response for signed-in users.
func OptionalJWTAuthMiddleware(jwtService *jwt.Service, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.Next()
			return
		}

		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			logger.Warn("ignoring invalid token on public route", "error", err.Error())
			c.Next()
			return
		}

		c.Set("claims", claims)
		c.Set("userId", claims.UserID)
		c.Set("studentId", claims.StudentID)

		c.Next()
	}
}

// UserID extracts the authenticated user's ID from the context. The second
// return is false when the auth middleware did not run.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userId")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
