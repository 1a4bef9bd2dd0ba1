package gate

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Annany2002/db-bakery/internal/session"
)

// Middleware returns Echo middleware that consults the gate on every
// request. The session is re-read from the store each time so a decision
// never outlives the state it was made from.
//
// Redirects are 303s for browsers; requests under /api/ get a JSON 401
// instead, since an API client can't follow an HTML login page.
func Middleware(g *Gate, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Request().URL.Path

			switch g.Decide(route, store.Current()) {
			case RedirectLogin:
				if isAPIRequest(c) {
					return c.JSON(http.StatusUnauthorized, map[string]string{
						"error":   "unauthorized",
						"message": "authentication required",
					})
				}
				return c.Redirect(http.StatusSeeOther, g.LoginRoute())

			case RedirectDashboard:
				return c.Redirect(http.StatusSeeOther, g.DashboardRoute())

			default:
				return next(c)
			}
		}
	}
}

// isAPIRequest returns true if the request targets the /api/ path.
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api")
}
