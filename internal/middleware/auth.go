package middleware

import (
	"log"
	"net/http"
	"net/url"

	"github.com/7pairs/twingo2/internal/models"
	"github.com/7pairs/twingo2/internal/services"
	"github.com/7pairs/twingo2/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionUserID = "user_id"
)

// RequireAuth resolves the session principal into an account. Anonymous
// visitors and sessions pointing at a missing or deactivated account are
// sent to /login with the original URL as the return target.
func RequireAuth(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, ok := session.Get(SessionUserID).(uint)
		if !ok {
			redirectToLogin(c)
			return
		}

		account, err := accounts.Lookup(id)
		if err != nil {
			// Stale principal: the account vanished or was deactivated
			// since the session was established
			session.Clear()
			if err := session.Save(); err != nil {
				log.Printf("[Auth] Failed to clear stale session: %v", err)
			}
			redirectToLogin(c)
			return
		}

		c.Set("account", account)
		c.Set(SessionUserID, account.ID)
		c.Next()
	}
}

// RequireAdmin gates a route to superuser staff accounts. It must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("account")
		if !exists {
			forbidden(c, "Unauthorized access")
			return
		}

		account, ok := v.(*models.Account)
		if !ok || !account.IsAdmin() {
			forbidden(c, "Admin access required")
			return
		}

		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.String()))
	c.Abort()
}

func forbidden(c *gin.Context, message string) {
	templates.RenderTempl(
		c,
		http.StatusForbidden,
		templates.ErrorPage(templates.ErrorPageProps{
			Error: message,
		}),
	)
	c.Abort()
}
