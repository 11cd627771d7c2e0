package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"phonegate/internal/authz"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

// RequirePermission lets the request through only when the caller's role
// carries perm.
func RequirePermission(users repositories.UserDirectory, perm authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == models.AnonymousUserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		u, err := users.GetByID(c.Request.Context(), userID)
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if err != nil {
			zap.L().Error("Failed to load user for permission check", zap.Int("userID", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "try again later"})
			return
		}
		if !authz.HasPermission(u.RoleID, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
