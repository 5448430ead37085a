package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/provider"
	"github.com/7pairs/twingo2/internal/services"
	"github.com/7pairs/twingo2/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a scriptable provider.Client for handler tests.
type stubProvider struct {
	requestToken    provider.TokenPair
	authURL         string
	requestTokenErr error

	accessToken    provider.TokenPair
	accessTokenErr error

	profile    *provider.Profile
	profileErr error
}

func (s *stubProvider) RequestToken(
	ctx context.Context,
	callbackURL string,
) (provider.TokenPair, string, error) {
	if s.requestTokenErr != nil {
		return provider.TokenPair{}, "", s.requestTokenErr
	}
	return s.requestToken, s.authURL, nil
}

func (s *stubProvider) AccessToken(
	ctx context.Context,
	requestToken provider.TokenPair,
	verifier string,
) (provider.TokenPair, error) {
	if s.accessTokenErr != nil {
		return provider.TokenPair{}, s.accessTokenErr
	}
	return s.accessToken, nil
}

func (s *stubProvider) VerifyCredentials(
	ctx context.Context,
	accessToken provider.TokenPair,
) (*provider.Profile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profile, nil
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		requestToken: provider.TokenPair{Token: "req-token", Secret: "req-secret"},
		authURL:      "https://api.twitter.com/oauth/authenticate?oauth_token=req-token",
		accessToken:  provider.TokenPair{Token: "access-token", Secret: "access-secret"},
		profile: &provider.Profile{
			ID:         1402804142,
			ScreenName: "jackdorsey",
			Name:       "Jack Dorsey",
		},
	}
}

// newTestLoginHandler wires a LoginHandler around an in-memory store, a
// disabled audit worker, and no-op metrics.
func newTestLoginHandler(
	t *testing.T,
	p provider.Client,
	cfg *config.Config,
) (*LoginHandler, *store.Store) {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)

	if cfg == nil {
		cfg = &config.Config{BaseURL: "http://localhost:8080"}
	}

	audit := services.NewAuditService(nil, false, 0)
	accounts := services.NewAccountService(s, p, cfg, audit, metrics.NewNoopMetrics())
	h := NewLoginHandler(p, accounts, audit, cfg, metrics.NewNoopMetrics())
	return h, s
}

// setupLoginRouter builds a Gin router with session middleware, the login
// routes, and a /test-session helper that returns current session keys as JSON.
func setupLoginRouter(h *LoginHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("test_session", store))

	r.GET("/login", h.Login)
	r.GET("/callback", h.Callback)
	r.GET("/logout", h.Logout)

	// Helper endpoint: exposes session state for assertions.
	r.GET("/test-session", func(c *gin.Context) {
		sess := sessions.Default(c)
		c.JSON(http.StatusOK, gin.H{
			"oauth_token":        sess.Get(sessionKeyToken),
			"oauth_token_secret": sess.Get(sessionKeyTokenSecret),
			"next":               sess.Get(sessionKeyNext),
			"user_id":            sess.Get(sessionKeyUserID),
		})
	})

	return r
}

// sessionCookies extracts Set-Cookie headers from a response recorder.
func sessionCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	resp := http.Response{Header: w.Header()}
	return resp.Cookies()
}

// readSession makes a GET /test-session request using the provided cookies
// and returns the decoded JSON body.
func readSession(
	t *testing.T,
	r *gin.Engine,
	cookies []*http.Cookie,
) map[string]any {
	t.Helper()
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodGet,
		"/test-session",
		nil,
	)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	return data
}

func doGet(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// startLogin initiates the handshake and returns the session cookies.
func startLogin(
	t *testing.T,
	r *gin.Engine,
	path string,
) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()
	w := doGet(r, path, nil)
	require.Equal(t, http.StatusFound, w.Code)
	return w, sessionCookies(w)
}

// ============================================================
// Login – handshake initiation
// ============================================================

func TestLogin_RedirectsToAuthorizationURL(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	w, cookies := startLogin(t, r, "/login")

	assert.Equal(t,
		"https://api.twitter.com/oauth/authenticate?oauth_token=req-token",
		w.Header().Get("Location"))

	sess := readSession(t, r, cookies)
	assert.Equal(t, "req-token", sess["oauth_token"])
	assert.Equal(t, "req-secret", sess["oauth_token_secret"])
	assert.Nil(t, sess["next"])
}

func TestLogin_SafeNext_StoredInSession(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login?next=/reports")

	sess := readSession(t, r, cookies)
	assert.Equal(t, "/reports", sess["next"])
}

func TestLogin_UnsafeNext_DroppedFromSession(t *testing.T) {
	for _, next := range []string{
		"https://attacker.com/phishing",
		"//evil.com",
		"javascript:alert(1)",
		"/reports%0d%0aSet-Cookie:+evil=1",
	} {
		t.Run(next, func(t *testing.T) {
			h, _ := newTestLoginHandler(t, newStubProvider(), nil)
			r := setupLoginRouter(h)

			_, cookies := startLogin(t, r, "/login?next="+next)

			sess := readSession(t, r, cookies)
			assert.Nil(t, sess["next"])
		})
	}
}

func TestLogin_ProviderDown_Returns502(t *testing.T) {
	stub := newStubProvider()
	stub.requestTokenErr = provider.ErrProviderFailure
	h, _ := newTestLoginHandler(t, stub, nil)
	r := setupLoginRouter(h)

	w := doGet(r, "/login", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	sess := readSession(t, r, sessionCookies(w))
	assert.Nil(t, sess["oauth_token"])
}

// ============================================================
// Callback – validation and completion
// ============================================================

func TestCallback_NoHandshakeInSession_Returns401(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallback_TokenMismatch_Returns401AndClearsSession(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	w := doGet(r, "/callback?oauth_token=other-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// The stored request token must be gone: the handshake is dead
	sess := readSession(t, r, sessionCookies(w))
	assert.Nil(t, sess["oauth_token"])
	assert.Nil(t, sess["oauth_token_secret"])
}

func TestCallback_MissingVerifier_Returns401(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	w := doGet(r, "/callback?oauth_token=req-token", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallback_ExchangeFailure_Returns401(t *testing.T) {
	stub := newStubProvider()
	stub.accessTokenErr = provider.ErrProviderFailure
	h, _ := newTestLoginHandler(t, stub, nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallback_VerifyFailure_Returns401(t *testing.T) {
	stub := newStubProvider()
	stub.profileErr = provider.ErrProviderFailure
	h, _ := newTestLoginHandler(t, stub, nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallback_Success_EstablishesSession(t *testing.T) {
	h, s := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	account, err := s.GetAccountByTwitterID(1402804142)
	require.NoError(t, err)

	sess := readSession(t, r, sessionCookies(w))
	assert.EqualValues(t, account.ID, sess["user_id"])
	// Request token is single use and must not survive completion
	assert.Nil(t, sess["oauth_token"])
	assert.Nil(t, sess["oauth_token_secret"])
}

func TestCallback_Success_HonorsNext(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login?next=/reports")

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/reports", w.Header().Get("Location"))

	// next is consumed exactly once
	sess := readSession(t, r, sessionCookies(w))
	assert.Nil(t, sess["next"])
}

func TestCallback_Success_DefaultRedirectFromConfig(t *testing.T) {
	cfg := &config.Config{
		BaseURL:       "http://localhost:8080",
		AfterLoginURL: "/dashboard",
	}
	h, _ := newTestLoginHandler(t, newStubProvider(), cfg)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestCallback_NextWinsOverConfiguredDefault(t *testing.T) {
	cfg := &config.Config{
		BaseURL:       "http://localhost:8080",
		AfterLoginURL: "/dashboard",
	}
	h, _ := newTestLoginHandler(t, newStubProvider(), cfg)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login?next=/reports")

	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/reports", w.Header().Get("Location"))
}

func TestCallback_Replay_Returns401(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")

	first := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, first.Code)

	// Replaying the callback against the updated session must fail: the
	// request token was consumed
	second := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", sessionCookies(first))
	assert.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestCallback_DeactivatedAccount_Returns401(t *testing.T) {
	h, s := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	// First login provisions the account
	_, cookies := startLogin(t, r, "/login")
	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, w.Code)

	account, err := s.GetAccountByTwitterID(1402804142)
	require.NoError(t, err)
	account.IsActive = false
	require.NoError(t, s.UpdateAccount(account))

	// A fresh handshake for the deactivated account is rejected
	_, cookies = startLogin(t, r, "/login")
	w = doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ============================================================
// Logout
// ============================================================

func TestLogout_ClearsSessionAndRedirects(t *testing.T) {
	h, _ := newTestLoginHandler(t, newStubProvider(), nil)
	r := setupLoginRouter(h)

	_, cookies := startLogin(t, r, "/login")
	w := doGet(r, "/callback?oauth_token=req-token&oauth_verifier=v", cookies)
	require.Equal(t, http.StatusFound, w.Code)

	logoutW := doGet(r, "/logout", sessionCookies(w))
	require.Equal(t, http.StatusFound, logoutW.Code)
	assert.Equal(t, "/", logoutW.Header().Get("Location"))

	sess := readSession(t, r, sessionCookies(logoutW))
	assert.Nil(t, sess["user_id"])
}

func TestLogout_AnonymousSession_StillRedirects(t *testing.T) {
	cfg := &config.Config{
		BaseURL:        "http://localhost:8080",
		AfterLogoutURL: "/goodbye",
	}
	h, _ := newTestLoginHandler(t, newStubProvider(), cfg)
	r := setupLoginRouter(h)

	w := doGet(r, "/logout", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/goodbye", w.Header().Get("Location"))
}
