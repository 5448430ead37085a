package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gomodule/oauth1/oauth"
)

const twitterBaseURL = "https://api.twitter.com"

// TwitterConfig contains configuration for the Twitter OAuth 1.0a client
type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string

	// BaseURL overrides the Twitter API base URL (tests)
	BaseURL string

	// HTTPClient carries the provider timeout; http.DefaultClient when nil
	HTTPClient *http.Client
}

// Twitter talks to Twitter's OAuth 1.0a and REST endpoints
type Twitter struct {
	oauthClient *oauth.Client
	httpClient  *http.Client
	verifyURL   string
}

var _ Client = (*Twitter)(nil)

// NewTwitter creates a Twitter provider client
func NewTwitter(cfg TwitterConfig) *Twitter {
	base := cfg.BaseURL
	if base == "" {
		base = twitterBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Twitter{
		oauthClient: &oauth.Client{
			Credentials: oauth.Credentials{
				Token:  cfg.ConsumerKey,
				Secret: cfg.ConsumerSecret,
			},
			TemporaryCredentialRequestURI: base + "/oauth/request_token",
			ResourceOwnerAuthorizationURI: base + "/oauth/authenticate",
			TokenRequestURI:               base + "/oauth/access_token",
		},
		httpClient: httpClient,
		verifyURL:  base + "/1.1/account/verify_credentials.json",
	}
}

// RequestToken obtains temporary credentials and the authorization URL
func (t *Twitter) RequestToken(
	ctx context.Context,
	callbackURL string,
) (TokenPair, string, error) {
	tempCred, err := t.oauthClient.RequestTemporaryCredentials(
		t.clientFor(ctx),
		callbackURL,
		nil,
	)
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	authURL := t.oauthClient.AuthorizationURL(tempCred, nil)
	return TokenPair{Token: tempCred.Token, Secret: tempCred.Secret}, authURL, nil
}

// AccessToken exchanges the request token and verifier for token credentials
func (t *Twitter) AccessToken(
	ctx context.Context,
	requestToken TokenPair,
	verifier string,
) (TokenPair, error) {
	tempCred := &oauth.Credentials{
		Token:  requestToken.Token,
		Secret: requestToken.Secret,
	}
	tokenCred, _, err := t.oauthClient.RequestToken(t.clientFor(ctx), tempCred, verifier)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return TokenPair{Token: tokenCred.Token, Secret: tokenCred.Secret}, nil
}

// VerifyCredentials fetches the authenticated user's profile
func (t *Twitter) VerifyCredentials(
	ctx context.Context,
	accessToken TokenPair,
) (*Profile, error) {
	creds := &oauth.Credentials{Token: accessToken.Token, Secret: accessToken.Secret}

	resp, err := t.oauthClient.Get(t.clientFor(ctx), creds, t.verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf(
			"%w: verify_credentials returned %s - %s",
			ErrProviderFailure,
			resp.Status,
			string(body),
		)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decoding profile: %v", ErrProviderFailure, err)
	}
	return &profile, nil
}

// clientFor returns the HTTP client to use for one round trip. When the
// context carries a deadline tighter than the configured timeout, a copy of
// the client with the shorter timeout is used instead.
func (t *Twitter) clientFor(ctx context.Context) *http.Client {
	deadline, ok := ctx.Deadline()
	if !ok {
		return t.httpClient
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Nanosecond
	}
	if t.httpClient.Timeout != 0 && t.httpClient.Timeout < remaining {
		return t.httpClient
	}
	clone := *t.httpClient
	clone.Timeout = remaining
	return &clone
}
