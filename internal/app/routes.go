package app

import (
	"time"

	"github.com/Annany2002/db-bakery/internal/gate"
	"github.com/Annany2002/db-bakery/internal/middleware"
	"github.com/Annany2002/db-bakery/internal/web"
)

// routeClasses is the application's access map: every route the app serves,
// classified for the gate. Routes not listed here default to Public, which
// lets the router's own 404 handling answer for unknown paths.
func routeClasses() map[string]gate.Class {
	return map[string]gate.Class{
		"/":            gate.Public,
		"/healthz":     gate.Public,
		"/api/session": gate.Public,

		"/login":    gate.GuestOnly,
		"/register": gate.GuestOnly,

		"/dashboard": gate.AuthOnly,
		"/connect":   gate.AuthOnly,
		"/backups":   gate.AuthOnly,
		"/settings":  gate.AuthOnly,
		"/logout":    gate.AuthOnly,
	}
}

// RegisterRoutes wires all HTTP routes. The gate middleware registered in
// setupMiddleware authorizes every one of these on each request, so the
// handlers themselves never re-check authentication.
func (a *App) RegisterRoutes() {
	h := web.NewHandler(a.Store, a.Gate)

	e := a.Echo

	e.GET("/", h.Landing)
	e.GET("/healthz", h.Health)
	e.GET("/api/session", h.SessionInfo)

	// Credential endpoints are rate limited per client IP to slow down
	// guessing. Limits are generous enough for a human operator.
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))

	e.POST("/logout", h.Logout)

	e.GET("/dashboard", h.Dashboard)
	e.GET("/connect", h.Connect)
	e.GET("/backups", h.Backups)
	e.GET("/settings", h.Settings)
}
