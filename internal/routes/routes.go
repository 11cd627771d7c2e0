package routes

import (
	"github.com/gin-gonic/gin"

	"phonegate/internal/authz"
	"phonegate/internal/handlers"
	"phonegate/internal/middleware"
	"phonegate/internal/repositories"
)

// Route names used by the gate allow-list.
const (
	NameVerifyForm    = "phonegate.verify_otp_form"
	NameLogout        = "user.logout"
	NameLogoutConfirm = "user.logout.confirm"
	NameProfileEdit   = "entity.user.edit_form"
	NameProfile       = "user.page"
	NameNotFound      = "system.404"
	NameDashboard     = "dashboard"
	NameHealthz       = "system.healthz"
	NameAdminOverride = "phonegate.admin_phone_verification"
)

// Table maps gin route patterns (c.FullPath) to route names. A key may be
// prefixed with the method ("POST /user/logout") when one pattern carries
// two names; the method-qualified key wins.
type Table map[string]string

// Namer returns the gate's route-name lookup. Unmatched requests have an
// empty FullPath and are named system.404; patterns missing from the table
// fall back to the raw pattern.
func (t Table) Namer() middleware.RouteNamer {
	return func(c *gin.Context) string {
		full := c.FullPath()
		if full == "" {
			return NameNotFound
		}
		if name, ok := t[c.Request.Method+" "+full]; ok {
			return name
		}
		if name, ok := t[full]; ok {
			return name
		}
		return full
	}
}

type Handlers struct {
	Verify *handlers.VerifyHandler
	User   *handlers.UserHandler
	Admin  *handlers.AdminHandler
}

type Options struct {
	JWTSecret  []byte
	VerifyPath string
	Gate       middleware.Gatekeeper
	Users      repositories.UserDirectory
}

// SetupRoutes installs identity resolution and the phone gate on the whole
// engine (404s included), then registers the named routes.
func SetupRoutes(r *gin.Engine, h Handlers, opts Options) Table {
	table := Table{
		opts.VerifyPath:             NameVerifyForm,
		"/user":                     NameProfile,
		"/user/phone":               NameProfileEdit,
		"GET /user/logout":          NameLogoutConfirm,
		"POST /user/logout":         NameLogout,
		"/dashboard":                NameDashboard,
		"/healthz":                  NameHealthz,
		"/admin/phone-verification": NameAdminOverride,
	}

	r.Use(middleware.AuthMiddleware(opts.JWTSecret))
	r.Use(middleware.PhoneGate(opts.Gate, table.Namer(), opts.VerifyPath))
	r.NoRoute(handlers.NotFound)

	r.GET("/healthz", handlers.Healthz)

	// ---- verification page
	r.GET(opts.VerifyPath, h.Verify.ShowForm)
	r.POST(opts.VerifyPath, h.Verify.Submit)

	// ---- profile (allow-listed)
	r.GET("/user", h.User.Profile)
	r.PUT("/user/phone", h.User.UpdatePhone)
	r.POST("/user/phone", h.User.UpdatePhone)
	r.GET("/user/logout", h.User.LogoutConfirm)
	r.POST("/user/logout", h.User.Logout)

	// ---- protected content
	r.GET("/dashboard", handlers.Dashboard)

	// ---- admin
	admin := r.Group("/admin", middleware.RequirePermission(opts.Users, authz.PermAdministerUsers))
	{
		admin.POST("/phone-verification", h.Admin.OverridePhone)
	}

	return table
}
