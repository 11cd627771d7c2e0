package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"phonegate/internal/models"
	"phonegate/internal/utils"
)

const (
	CtxUserID       = "user_id"
	AccessCookie    = "access_token"
	tokenExpLeeway  = 2 * time.Minute
	errInvalidToken = "Invalid or expired token"
)

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if v, err := c.Cookie(AccessCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

// AuthMiddleware resolves the caller's identity. No token means anonymous
// (user_id 0); a token that is present but invalid is rejected.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxUserID, models.AnonymousUserID)

		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if c.GetHeader("Authorization") != "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
				return
			}
			c.Next()
			return
		}

		claims := &utils.AccessClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		}, jwt.WithLeeway(tokenExpLeeway), jwt.WithExpirationRequired())
		if err != nil || !token.Valid || claims.UserID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Next()
	}
}

// UserID reads what AuthMiddleware stored; 0 when anonymous.
func UserID(c *gin.Context) int {
	if v, ok := c.Get(CtxUserID); ok {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return models.AnonymousUserID
}
