package handlers

import (
	"net/http"

	"github.com/7pairs/twingo2/internal/services"
	"github.com/7pairs/twingo2/internal/templates"
	"github.com/7pairs/twingo2/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// PageHandler serves the HTML pages
type PageHandler struct {
	accounts *services.AccountService
}

func NewPageHandler(accounts *services.AccountService) *PageHandler {
	return &PageHandler{accounts: accounts}
}

// Home renders the landing page. Logged-in visitors see their screen name,
// everyone else gets a sign-in link.
func (h *PageHandler) Home(c *gin.Context) {
	var props templates.HomePageProps

	session := sessions.Default(c)
	if v := session.Get(sessionKeyUserID); v != nil {
		if id, ok := v.(uint); ok {
			// A stale or deactivated principal renders as anonymous
			if account, err := h.accounts.Lookup(id); err == nil {
				props.Account = account
			}
		}
	}

	templates.RenderTempl(c, http.StatusOK, templates.HomePage(props))
}

// Me renders the profile of the authenticated account. RequireAuth has
// already resolved the principal into the request context.
func (h *PageHandler) Me(c *gin.Context) {
	account := util.GetAccountFromContext(c)
	if account == nil {
		templates.RenderTempl(
			c,
			http.StatusUnauthorized,
			templates.ErrorPage(templates.ErrorPageProps{
				Error: "User not authenticated",
			}),
		)
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.ProfilePage(templates.ProfilePageProps{
		Account: account,
	}))
}
