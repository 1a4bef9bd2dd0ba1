// Package pages holds the Templ components for Guard's server-rendered
// views. The components here are small enough that they are written
// directly against the templ API instead of generated from .templ
// sources; the render pipeline (middleware.Render) is the same either
// way. Pages only read session state via the layouts context helpers --
// they never mutate it.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/Annany2002/db-bakery/internal/templates/layouts"
)

// shell wraps a body component in the shared page chrome: document head,
// navbar, and footer. The navbar switches between the marketing links and
// the dashboard links based on the session state in ctx.
func shell(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<title>%s | Guard</title><link rel="stylesheet" href="/static/app.css"></head><body>`,
			templ.EscapeString(title),
		); err != nil {
			return err
		}
		if err := navbar().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="container">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main><footer class="footer">Guard &mdash; database backups without the dread</footer></body></html>`)
		return err
	})
}

// navbar renders the top navigation. Authenticated operators get the
// dashboard links and a logout button; guests get login/register.
func navbar() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="navbar"><a class="brand" href="/">Guard</a><div class="nav-links">`); err != nil {
			return err
		}

		if layouts.IsAuthenticated(ctx) {
			active := layouts.GetActivePath(ctx)
			for _, link := range [...]struct{ path, label string }{
				{"/dashboard", "Dashboard"},
				{"/connect", "Connections"},
				{"/backups", "Backups"},
				{"/settings", "Settings"},
			} {
				class := "nav-link"
				if link.path == active {
					class = "nav-link active"
				}
				if _, err := fmt.Fprintf(w, `<a class="%s" href="%s">%s</a>`, class, link.path, link.label); err != nil {
					return err
				}
			}
			name := layouts.GetUserName(ctx)
			if name == "" {
				name = layouts.GetUserEmail(ctx)
			}
			if _, err := fmt.Fprintf(w,
				`<span class="nav-user">%s</span><form method="post" action="/logout" class="nav-form"><button type="submit">Log out</button></form>`,
				templ.EscapeString(name),
			); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w,
				`<a class="nav-link" href="/login">Log in</a><a class="nav-link nav-cta" href="/register">Get started</a>`,
			); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div></nav>`)
		return err
	})
}

// Landing renders the public marketing page.
func Landing() templ.Component {
	return shell("Scheduled database backups", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<section class="hero"><h1>Back up every database. Sleep at night.</h1>`+
				`<p>Guard schedules, verifies, and restores backups for PostgreSQL, MySQL, and MongoDB.</p>`+
				`<a class="cta" href="/register">Start free</a></section>`,
		)
		return err
	}))
}

// LoginPage renders the login form, pre-filling the email after a failed
// attempt. errMsg is shown above the form when non-empty.
func LoginPage(email, errMsg string) templ.Component {
	return shell("Log in", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := formError(w, errMsg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w,
			`<form method="post" action="/login" class="auth-form"><h1>Log in</h1>`+
				`<label>Email<input type="email" name="email" value="%s" required></label>`+
				`<label>Password<input type="password" name="password" required></label>`+
				`<button type="submit">Log in</button>`+
				`<p class="auth-alt">New to Guard? <a href="/register">Create an account</a></p></form>`,
			templ.EscapeString(email),
		)
		return err
	}))
}

// RegisterPage renders the registration form.
func RegisterPage(name, email, errMsg string) templ.Component {
	return shell("Create account", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := formError(w, errMsg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w,
			`<form method="post" action="/register" class="auth-form"><h1>Create your account</h1>`+
				`<label>Name<input type="text" name="name" value="%s" required></label>`+
				`<label>Email<input type="email" name="email" value="%s" required></label>`+
				`<label>Password<input type="password" name="password" required></label>`+
				`<button type="submit">Create account</button>`+
				`<p class="auth-alt">Already registered? <a href="/login">Log in</a></p></form>`,
			templ.EscapeString(name),
			templ.EscapeString(email),
		)
		return err
	}))
}

// Dashboard renders the authenticated landing view.
func Dashboard() templ.Component {
	return shell("Dashboard", heading("Dashboard", "Recent backup runs and database health at a glance."))
}

// Connect renders the database connections view.
func Connect() templ.Component {
	return shell("Connections", heading("Connections", "Databases Guard is backing up."))
}

// Backups renders the backup history view.
func Backups() templ.Component {
	return shell("Backups", heading("Backups", "Every snapshot, verified and restorable."))
}

// Settings renders the account settings view.
func Settings() templ.Component {
	return shell("Settings", heading("Settings", "Schedules, retention, and notifications."))
}

// ErrorPage renders a full-page error for browser requests.
func ErrorPage(code int, message string) templ.Component {
	return shell(fmt.Sprintf("Error %d", code), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="error-page"><h1>%d</h1><p>%s</p><a href="/">Back to safety</a></section>`,
			code,
			templ.EscapeString(message),
		)
		return err
	}))
}

// heading is a shared body for the dashboard shell pages.
func heading(title, blurb string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><p class="blurb">%s</p>`,
			templ.EscapeString(title),
			templ.EscapeString(blurb),
		)
		return err
	})
}

// formError writes the error banner shown above auth forms.
func formError(w io.Writer, errMsg string) error {
	if errMsg == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, `<div class="form-error">%s</div>`, templ.EscapeString(errMsg))
	return err
}
