// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (DB pool, Redis client,
// Echo instance) and wires the session store, the access gate, and the
// web handlers together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Annany2002/db-bakery/internal/account"
	"github.com/Annany2002/db-bakery/internal/apperror"
	"github.com/Annany2002/db-bakery/internal/config"
	"github.com/Annany2002/db-bakery/internal/gate"
	"github.com/Annany2002/db-bakery/internal/middleware"
	"github.com/Annany2002/db-bakery/internal/session"
	"github.com/Annany2002/db-bakery/internal/templates/layouts"
	"github.com/Annany2002/db-bakery/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool backing the account service.
	DB *sql.DB

	// Redis is the Redis client holding the durable session slot.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// Store is the session store -- the single source of truth for who
	// is logged in. Seeded from the durable slot by Restore at startup.
	Store *session.Store

	// Gate authorizes every navigation against the current session.
	Gate *gate.Gate
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Configure trusted reverse proxy IPs so c.RealIP() returns the actual
	// client IP instead of the proxy's IP. The login rate limiter depends
	// on accurate client IPs.
	middleware.TrustedProxies(e, []string{
		"127.0.0.0/8",    // Localhost
		"10.0.0.0/8",     // Docker default bridge
		"172.16.0.0/12",  // Docker bridge (alternate range)
		"192.168.0.0/16", // Common LAN
		"fd00::/8",       // IPv6 private
	})

	// The account service is the backend authentication service the
	// session store delegates credential checks to.
	accounts := account.NewService(account.NewRepository(db))

	// The durable slot lives under a single Redis key so the session
	// survives restarts.
	slot := session.NewRedisSlot(rdb, cfg.Session.SlotKey, cfg.Session.TTL)

	g := gate.New(routeClasses(), "/login", "/dashboard")

	// The store's navigation collaborator can only request navigation;
	// in an HTTP app the actual redirect is written by the handler that
	// triggered the state change.
	store := session.NewStore(slot, accounts, func(route string) {
		slog.Debug("navigation requested", slog.String("route", route))
	}, g.LoginRoute())

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
		Store:  store,
		Gate:   g,
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	// Copy session state into the render context so the navbar knows what
	// chrome to show. This is the presentation layer's read path.
	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		current := store.Current()
		ctx = layouts.SetIsAuthenticated(ctx, current.IsAuthenticated())
		if id, ok := current.Identity(); ok {
			ctx = layouts.SetUserEmail(ctx, id.Email)
			ctx = layouts.SetUserName(ctx, id.DisplayName)
		}
		return layouts.SetActivePath(ctx, c.Request().URL.Path)
	}

	// Serve static files (CSS, images).
	e.Static("/static", "static")

	return app
}

// Restore seeds the session store from the durable slot. Called once in
// main before the listener starts, so no request is ever gated against an
// unseeded store.
func (a *App) Restore(ctx context.Context) error {
	_, err := a.Store.Restore(ctx)
	return err
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first; the gate runs last so
// every routed request is authorized against the live session.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	// Request logging -- log every request with method, path, status, latency.
	a.Echo.Use(middleware.RequestLogger())

	// Security headers -- CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders())

	// Route authorization -- evaluated on every request, never cached.
	a.Echo.Use(gate.Middleware(a.Gate, a.Store))
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to appropriate HTTP responses, and renders error pages for
// browser requests or JSON for API requests.
//
// 401 errors on browser requests redirect to the login page.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred"

	// Check if it's our domain error type.
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	} else {
		// Check for Echo's built-in HTTP errors (e.g., 404 from router).
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			} else {
				message = defaultErrorMessage(code)
			}
		} else {
			// Truly unexpected error -- log it.
			slog.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
		}
	}

	// API requests always get JSON.
	if isAPIRequest(c) {
		c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	// Regular browser 401 -- redirect to login page.
	if code == http.StatusUnauthorized {
		c.Redirect(http.StatusSeeOther, a.Gate.LoginRoute())
		return
	}

	middleware.Render(c, code, pages.ErrorPage(code, message))
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to log in to access this page."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusConflict:
		return "This action conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusInternalServerError:
		return "Something went wrong on our end. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

// isAPIRequest returns true if the request is targeting the API (JSON response expected).
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api")
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Guard server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
