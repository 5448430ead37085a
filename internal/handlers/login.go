package handlers

import (
	"log"
	"net/http"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/models"
	"github.com/7pairs/twingo2/internal/provider"
	"github.com/7pairs/twingo2/internal/services"
	"github.com/7pairs/twingo2/internal/templates"
	"github.com/7pairs/twingo2/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys used across the handshake
const (
	sessionKeyToken       = "oauth_token"
	sessionKeyTokenSecret = "oauth_token_secret"
	sessionKeyNext        = "next"
	sessionKeyUserID      = "user_id"
)

// Callback outcomes reported to metrics
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
)

const callbackPath = "/callback"

// LoginHandler drives the three-legged OAuth 1.0a handshake with Twitter
type LoginHandler struct {
	provider provider.Client
	accounts *services.AccountService
	audit    *services.AuditService
	cfg      *config.Config
	metrics  metrics.Recorder
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(
	p provider.Client,
	accounts *services.AccountService,
	audit *services.AuditService,
	cfg *config.Config,
	m metrics.Recorder,
) *LoginHandler {
	return &LoginHandler{
		provider: p,
		accounts: accounts,
		audit:    audit,
		cfg:      cfg,
		metrics:  m,
	}
}

// Login initiates the handshake: obtain a request token, stash it in the
// session, and redirect the user to the provider's authorization page.
func (h *LoginHandler) Login(c *gin.Context) {
	callbackURL := util.CallbackURL(
		h.cfg.CallbackURL,
		requestScheme(c),
		c.Request.Host,
		callbackPath,
	)

	requestToken, authURL, err := h.provider.RequestToken(c.Request.Context(), callbackURL)
	h.metrics.RecordProviderCall("request_token", err == nil)
	if err != nil {
		log.Printf("[Auth] Failed to obtain request token: %v", err)
		h.audit.Log(c, services.AuditLogEntry{
			EventType:    models.EventLoginInitiated,
			Success:      false,
			ErrorMessage: err.Error(),
			UserAgent:    c.Request.UserAgent(),
			RequestPath:  c.Request.URL.Path,
		})
		templates.RenderTempl(
			c,
			http.StatusBadGateway,
			templates.ErrorPage(templates.ErrorPageProps{
				Error: "Twitter is not responding. Unable to start sign-in right now. Please try again later.",
			}),
		)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyToken, requestToken.Token)
	session.Set(sessionKeyTokenSecret, requestToken.Secret)

	// Save the post-login destination if it passes the open-redirect check.
	// An unsafe value is dropped silently and the default applies.
	if next := c.Query("next"); next != "" && util.IsRedirectSafe(next, h.cfg.BaseURL) {
		session.Set(sessionKeyNext, next)
	}

	if err := session.Save(); err != nil {
		log.Printf("[Auth] Failed to save session: %v", err)
		templates.RenderTempl(
			c,
			http.StatusInternalServerError,
			templates.ErrorPage(templates.ErrorPageProps{
				Error: "Internal server error. Failed to save session.",
			}),
		)
		return
	}

	h.metrics.RecordLoginInitiated()
	h.audit.Log(c, services.AuditLogEntry{
		EventType:   models.EventLoginInitiated,
		Success:     true,
		UserAgent:   c.Request.UserAgent(),
		RequestPath: c.Request.URL.Path,
	})

	c.Redirect(http.StatusFound, authURL)
}

// Callback completes the handshake. Every validation failure takes the same
// exit: session cleared, one generic 401. The response never reveals which
// check failed.
func (h *LoginHandler) Callback(c *gin.Context) {
	session := sessions.Default(c)

	savedToken := session.Get(sessionKeyToken)
	savedSecret := session.Get(sessionKeyTokenSecret)
	if savedToken == nil || savedSecret == nil {
		h.reject(c, session, "no request token in session")
		return
	}

	// The token echoed back by the provider must be the one this session
	// started the handshake with
	if returned := c.Query("oauth_token"); returned == "" || returned != savedToken.(string) {
		h.reject(c, session, "request token mismatch")
		return
	}

	verifier := c.Query("oauth_verifier")
	if verifier == "" {
		h.reject(c, session, "missing verifier")
		return
	}

	requestToken := provider.TokenPair{
		Token:  savedToken.(string),
		Secret: savedSecret.(string),
	}

	accessToken, err := h.provider.AccessToken(c.Request.Context(), requestToken, verifier)
	h.metrics.RecordProviderCall("access_token", err == nil)
	if err != nil {
		h.reject(c, session, "access token exchange failed: "+err.Error())
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), accessToken)
	if err != nil {
		h.reject(c, session, "authentication failed: "+err.Error())
		return
	}

	// The request token is single use; drop it before establishing the
	// authenticated session
	session.Delete(sessionKeyToken)
	session.Delete(sessionKeyTokenSecret)
	session.Set(sessionKeyUserID, account.ID)

	// Redirect priority: saved next param, configured default, site root
	redirectURL := "/"
	if h.cfg.AfterLoginURL != "" {
		redirectURL = h.cfg.AfterLoginURL
	}
	if next := session.Get(sessionKeyNext); next != nil {
		redirectURL = next.(string)
		session.Delete(sessionKeyNext)
	}

	if err := session.Save(); err != nil {
		log.Printf("[Auth] Failed to save session: %v", err)
		templates.RenderTempl(
			c,
			http.StatusInternalServerError,
			templates.ErrorPage(templates.ErrorPageProps{
				Error: "Internal server error. Failed to save session.",
			}),
		)
		return
	}

	h.metrics.RecordCallback(outcomeSuccess)
	h.audit.Log(c, services.AuditLogEntry{
		EventType:       models.EventLoginSuccess,
		ActorID:         account.ID,
		ActorScreenName: account.ScreenName,
		Success:         true,
		UserAgent:       c.Request.UserAgent(),
		RequestPath:     c.Request.URL.Path,
	})
	log.Printf("[Auth] User authenticated: screen_name=%s", account.ScreenName)

	c.Redirect(http.StatusFound, redirectURL)
}

// Logout tears down the session and redirects. It never fails: logging out
// an anonymous session is a no-op redirect.
func (h *LoginHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)

	var actorID uint
	if v := session.Get(sessionKeyUserID); v != nil {
		if id, ok := v.(uint); ok {
			actorID = id
		}
	}

	session.Clear()
	if err := session.Save(); err != nil {
		log.Printf("[Auth] Failed to clear session on logout: %v", err)
	}

	h.metrics.RecordLogout()
	h.audit.Log(c, services.AuditLogEntry{
		EventType:   models.EventLogout,
		ActorID:     actorID,
		Success:     true,
		UserAgent:   c.Request.UserAgent(),
		RequestPath: c.Request.URL.Path,
	})

	redirectURL := "/"
	if h.cfg.AfterLogoutURL != "" {
		redirectURL = h.cfg.AfterLogoutURL
	}
	c.Redirect(http.StatusFound, redirectURL)
}

// reject is the single exit for every callback validation failure. The
// session is cleared unconditionally so a later attempt starts clean, and
// the response body is identical for every reason.
func (h *LoginHandler) reject(c *gin.Context, session sessions.Session, reason string) {
	session.Clear()
	if err := session.Save(); err != nil {
		log.Printf("[Auth] Failed to clear session on rejection: %v", err)
	}

	h.metrics.RecordCallback(outcomeRejected)
	h.audit.Log(c, services.AuditLogEntry{
		EventType:    models.EventLoginRejected,
		Success:      false,
		ErrorMessage: reason,
		UserAgent:    c.Request.UserAgent(),
		RequestPath:  c.Request.URL.Path,
	})
	log.Printf("[Auth] Login rejected: %s", reason)

	templates.RenderTempl(
		c,
		http.StatusUnauthorized,
		templates.ErrorPage(templates.ErrorPageProps{
			Error: "Login failed. Unable to sign you in with Twitter. Please try again.",
		}),
	)
}

// requestScheme resolves the external scheme of the request, honoring the
// proxy header when present
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
