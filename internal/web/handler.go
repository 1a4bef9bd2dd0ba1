// Package web holds the HTTP handlers for Guard's pages and the JSON
// session read contract. Handlers are thin: they bind the request, call
// the session store, and render the response. No session logic lives
// here -- the store decides, the gate authorizes, handlers present.
package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Annany2002/db-bakery/internal/apperror"
	"github.com/Annany2002/db-bakery/internal/gate"
	"github.com/Annany2002/db-bakery/internal/middleware"
	"github.com/Annany2002/db-bakery/internal/session"
	"github.com/Annany2002/db-bakery/internal/templates/pages"
)

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterRequest holds the data submitted by the registration form.
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SessionResponse is the JSON shape of GET /api/session -- the read
// contract the dashboard chrome consumes to decide what to show.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

// Handler handles HTTP requests for Guard's pages and session endpoints.
type Handler struct {
	store *session.Store
	gate  *gate.Gate
}

// NewHandler creates a web handler over the given store and gate.
func NewHandler(store *session.Store, g *gate.Gate) *Handler {
	return &Handler{store: store, gate: g}
}

// Landing renders the public marketing page (GET /).
func (h *Handler) Landing(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.Landing())
}

// LoginForm renders the login page (GET /login). The gate middleware has
// already bounced authenticated visitors to the dashboard.
func (h *Handler) LoginForm(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.LoginPage("", ""))
}

// Login processes the login form submission (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	_, ok, err := h.store.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !ok {
		// Declined -- re-render the form with the error. Empty fields and
		// wrong credentials get the same message on purpose.
		return middleware.Render(c, http.StatusOK, pages.LoginPage(req.Email, "invalid email or password"))
	}

	return c.Redirect(http.StatusSeeOther, h.gate.DashboardRoute())
}

// RegisterForm renders the registration page (GET /register).
func (h *Handler) RegisterForm(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.RegisterPage("", "", ""))
}

// Register processes the registration form submission (POST /register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	// Basic server-side validation before touching the store.
	if msg := validateRegisterRequest(&req); msg != "" {
		return middleware.Render(c, http.StatusOK, pages.RegisterPage(req.Name, req.Email, msg))
	}

	_, ok, err := h.store.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !ok {
		return middleware.Render(c, http.StatusOK,
			pages.RegisterPage(req.Name, req.Email, "an account with this email already exists"))
	}

	return c.Redirect(http.StatusSeeOther, h.gate.DashboardRoute())
}

// Logout clears the session (POST /logout). The store requests navigation
// through its collaborator; the HTTP answer to that request is this
// redirect.
func (h *Handler) Logout(c echo.Context) error {
	if err := h.store.Logout(c.Request().Context()); err != nil {
		return apperror.NewInternal(err)
	}
	return c.Redirect(http.StatusSeeOther, h.gate.LoginRoute())
}

// Health is the liveness probe (GET /healthz).
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SessionInfo returns the current session as JSON (GET /api/session).
// Available to guests too -- the navbar needs it before login.
func (h *Handler) SessionInfo(c echo.Context) error {
	current := h.store.Current()

	resp := SessionResponse{Authenticated: current.IsAuthenticated()}
	if id, ok := current.Identity(); ok {
		resp.Email = id.Email
		resp.DisplayName = id.DisplayName
	}

	return c.JSON(http.StatusOK, resp)
}

// Dashboard renders the authenticated landing view (GET /dashboard).
func (h *Handler) Dashboard(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.Dashboard())
}

// Connect renders the database connections view (GET /connect).
func (h *Handler) Connect(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.Connect())
}

// Backups renders the backup history view (GET /backups).
func (h *Handler) Backups(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.Backups())
}

// Settings renders the account settings view (GET /settings).
func (h *Handler) Settings(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.Settings())
}

// validateRegisterRequest performs basic server-side validation on the
// registration form. Returns an error message or empty string.
func validateRegisterRequest(req *RegisterRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if len(req.Name) > 100 {
		return "name must be at most 100 characters"
	}
	if req.Email == "" {
		return "email is required"
	}
	if req.Password == "" {
		return "password is required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if len(req.Password) > 128 {
		return "password must be at most 128 characters"
	}
	return ""
}
