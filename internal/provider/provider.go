package provider

import (
	"context"
	"errors"
)

// TokenPair is a provider-issued credential pair. Request tokens and access
// tokens share the same shape; keeping an explicit value type avoids the
// positional mixups a bare string pair invites.
type TokenPair struct {
	Token  string
	Secret string
}

// Profile contains the canonical identity returned by the provider's
// verify-credentials endpoint. Read-only, sourced externally.
type Profile struct {
	ID              int64  `json:"id"`
	ScreenName      string `json:"screen_name"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	URL             string `json:"url"`
	ProfileImageURL string `json:"profile_image_url"`
}

// ErrProviderFailure covers any failed round trip to the identity provider:
// network errors, invalid or revoked tokens, provider-side errors.
var ErrProviderFailure = errors.New("identity provider request failed")

// Client drives the three-legged OAuth 1.0a exchange with the identity
// provider.
type Client interface {
	// RequestToken obtains a request token bound to the callback URL and
	// the authorization URL to send the user to.
	RequestToken(ctx context.Context, callbackURL string) (TokenPair, string, error)

	// AccessToken exchanges a request token plus verifier for an access token.
	AccessToken(ctx context.Context, requestToken TokenPair, verifier string) (TokenPair, error)

	// VerifyCredentials fetches the profile behind an access token.
	VerifyCredentials(ctx context.Context, accessToken TokenPair) (*Profile, error)
}
