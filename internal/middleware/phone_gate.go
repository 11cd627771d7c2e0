package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"phonegate/internal/services"
)

const (
	DestinationCookie = "phonegate_destination"
	destinationMaxAge = 15 * 60
)

type Gatekeeper interface {
	Decide(ctx context.Context, userID int, route string) services.GateDecision
}

// RouteNamer maps a matched request onto the route name the allow-list uses.
type RouteNamer func(c *gin.Context) string

// PhoneGate must be installed after AuthMiddleware and before any handler.
// A REDIRECT decision remembers where the user was going and aborts the chain.
func PhoneGate(gate Gatekeeper, routeName RouteNamer, verifyPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		route := routeName(c)

		d := gate.Decide(c.Request.Context(), userID, route)
		if d.Decision == services.DecisionPass {
			c.Next()
			return
		}

		zap.L().Debug("Phone gate redirect",
			zap.Int("userID", userID),
			zap.String("route", route),
			zap.String("reason", d.Reason))

		if c.Request.Method == http.MethodGet {
			if dest := SafeDestination(c.Request.URL.RequestURI()); dest != "" {
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(DestinationCookie, dest, destinationMaxAge, "/", "", false, true)
			}
		}
		c.Redirect(http.StatusFound, verifyPath)
		c.Abort()
	}
}

// SafeDestination returns dest when it is a local absolute path, "" otherwise.
func SafeDestination(dest string) string {
	dest = strings.TrimSpace(dest)
	if !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "/\\") {
		return ""
	}
	return dest
}

// TakeDestination returns the remembered path (or fallback) and clears the cookie.
func TakeDestination(c *gin.Context, fallback string) string {
	v, err := c.Cookie(DestinationCookie)
	if err != nil {
		return fallback
	}
	c.SetCookie(DestinationCookie, "", -1, "/", "", false, true)
	if dest := SafeDestination(v); dest != "" {
		return dest
	}
	return fallback
}
