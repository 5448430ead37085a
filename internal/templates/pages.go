package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/7pairs/twingo2/internal/models"
)

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	Error string
}

// HomePageProps contains properties for the landing page
type HomePageProps struct {
	Account *models.Account // nil when not logged in
}

// ProfilePageProps contains properties for the profile page
type ProfilePageProps struct {
	Account *models.Account
}

// ErrorPage renders a minimal error page
func ErrorPage(props ErrorPageProps) templ.Component {
	return page("Error", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>Error</h1><p>%s</p><p><a href="/">Home</a></p>`,
			html.EscapeString(props.Error))
		return err
	})
}

// HomePage renders the landing page
func HomePage(props HomePageProps) templ.Component {
	return page("Twingo", func(w io.Writer) error {
		if props.Account == nil {
			_, err := io.WriteString(w,
				`<h1>Twingo</h1><p><a href="/login">Sign in with Twitter</a></p>`)
			return err
		}
		_, err := fmt.Fprintf(w,
			`<h1>Twingo</h1><p>Signed in as @%s</p>`+
				`<p><a href="/me">Profile</a> | <a href="/logout">Sign out</a></p>`,
			html.EscapeString(props.Account.ScreenName))
		return err
	})
}

// ProfilePage renders the logged-in account's profile snapshot
func ProfilePage(props ProfilePageProps) templ.Component {
	return page("Profile", func(w io.Writer) error {
		a := props.Account
		_, err := fmt.Fprintf(w,
			`<h1>@%s</h1><p>%s</p><p>%s</p><p>%s</p>`+
				`<p><a href="/">Home</a> | <a href="/logout">Sign out</a></p>`,
			html.EscapeString(a.ScreenName),
			html.EscapeString(a.Name),
			html.EscapeString(a.Description),
			html.EscapeString(a.Location))
		return err
	})
}

// page wraps body markup in the shared HTML shell
func page(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head><body>`,
			html.EscapeString(title)); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
