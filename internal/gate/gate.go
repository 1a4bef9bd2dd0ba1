// Package gate decides, per navigation, whether a route is permitted for
// the current session. Every route is classified Public, AuthOnly, or
// GuestOnly, and the decision is re-evaluated on every request -- nothing
// is cached, so a logout on an AuthOnly page redirects immediately and a
// login on a GuestOnly page does too.
//
// The gate only reads session state; it never mutates it.
package gate

import (
	"github.com/Annany2002/db-bakery/internal/session"
)

// Class is a route's authorization classification.
type Class int

const (
	// Public routes are always visible (landing page, health check).
	Public Class = iota

	// AuthOnly routes require an authenticated session (dashboard).
	AuthOnly

	// GuestOnly routes require the absence of a session (login, register).
	GuestOnly
)

// Decision is the outcome of evaluating a route against a session.
type Decision int

const (
	// Allow lets the navigation proceed.
	Allow Decision = iota

	// RedirectLogin sends the visitor to the login route.
	RedirectLogin

	// RedirectDashboard sends an already-authenticated visitor to the
	// dashboard -- a logged-in operator must not see login/register again.
	RedirectDashboard
)

// Gate holds the route classification table and the two redirect targets.
// Construct once at startup and share; it is read-only after creation.
type Gate struct {
	classes        map[string]Class
	loginRoute     string
	dashboardRoute string
}

// New creates a gate over the given classification table. Routes missing
// from the table are treated as Public -- unknown paths fall through to
// the router's 404 handling rather than being blocked here.
func New(classes map[string]Class, loginRoute, dashboardRoute string) *Gate {
	// Copy so later mutation of the caller's map can't change decisions.
	table := make(map[string]Class, len(classes))
	for route, class := range classes {
		table[route] = class
	}
	return &Gate{
		classes:        table,
		loginRoute:     loginRoute,
		dashboardRoute: dashboardRoute,
	}
}

// Classify returns the route's classification.
func (g *Gate) Classify(route string) Class {
	if class, ok := g.classes[route]; ok {
		return class
	}
	return Public
}

// Decide evaluates the route against the session:
//
//	Public                        -> Allow
//	AuthOnly  + unauthenticated   -> RedirectLogin
//	AuthOnly  + authenticated     -> Allow
//	GuestOnly + authenticated     -> RedirectDashboard
//	GuestOnly + unauthenticated   -> Allow
func (g *Gate) Decide(route string, s session.Session) Decision {
	switch g.Classify(route) {
	case AuthOnly:
		if !s.IsAuthenticated() {
			return RedirectLogin
		}
		return Allow
	case GuestOnly:
		if s.IsAuthenticated() {
			return RedirectDashboard
		}
		return Allow
	default:
		return Allow
	}
}

// LoginRoute returns the GuestOnly entry route used for RedirectLogin.
func (g *Gate) LoginRoute() string {
	return g.loginRoute
}

// DashboardRoute returns the authenticated landing route used for
// RedirectDashboard.
func (g *Gate) DashboardRoute() string {
	return g.dashboardRoute
}
