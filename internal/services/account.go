package services

import (
	"context"
	"errors"
	"log"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/models"
	"github.com/7pairs/twingo2/internal/provider"
	"github.com/7pairs/twingo2/internal/store"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrAuthenticationFailed covers every provider-side failure: invalid,
	// expired or revoked tokens, network errors, provider errors. Callers
	// must not leak anything more specific to the browser.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAccountInactive is returned for accounts deactivated after
	// creation. To the HTTP layer it is indistinguishable from
	// ErrAuthenticationFailed.
	ErrAccountInactive = errors.New("account is inactive")

	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidProfile is returned by Provision when the provider profile
	// is missing a mandatory field. The provider returning an incomplete
	// profile is an unexpected condition, not a user-facing one.
	ErrInvalidProfile = errors.New("profile is missing mandatory fields")
)

// AccountStore is the slice of the durable store the reconciler needs:
// point lookups and creation, unique-constrained on Twitter ID.
type AccountStore interface {
	GetAccountByTwitterID(twitterID int64) (*models.Account, error)
	GetAccountByID(id uint) (*models.Account, error)
	CreateAccount(account *models.Account) error
}

// AccountService reconciles verified provider identities with local
// accounts: it finds or provisions the account behind an access token and
// gates login on the account being active.
type AccountService struct {
	store    AccountStore
	provider provider.Client
	cfg      *config.Config
	audit    *AuditService
	metrics  metrics.Recorder
}

func NewAccountService(
	s AccountStore,
	p provider.Client,
	cfg *config.Config,
	audit *AuditService,
	m metrics.Recorder,
) *AccountService {
	return &AccountService{
		store:    s,
		provider: p,
		cfg:      cfg,
		audit:    audit,
		metrics:  m,
	}
}

// Authenticate resolves an access token to a local account. The provider's
// verify-credentials endpoint establishes the identity; the account is
// looked up by Twitter ID and provisioned on first login. Any provider
// failure surfaces as ErrAuthenticationFailed, never as a panic.
func (s *AccountService) Authenticate(
	ctx context.Context,
	access provider.TokenPair,
) (*models.Account, error) {
	profile, err := s.provider.VerifyCredentials(ctx, access)
	if err != nil {
		s.metrics.RecordProviderCall("verify_credentials", false)
		log.Printf("[Auth] verify_credentials failed: %v", err)
		return nil, ErrAuthenticationFailed
	}
	s.metrics.RecordProviderCall("verify_credentials", true)

	account, err := s.store.GetAccountByTwitterID(profile.ID)
	switch {
	case err == nil:
		// Existing account. Profile fields are deliberately not refreshed:
		// administrator edits to the local record must survive repeat logins.
	case errors.Is(err, store.ErrRecordNotFound):
		account, err = s.Provision(ctx, profile)
		if errors.Is(err, store.ErrTwitterIDConflict) {
			// Lost a first-login race; the winner's row is authoritative
			account, err = s.store.GetAccountByTwitterID(profile.ID)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !account.IsActive {
		return nil, ErrAccountInactive
	}
	return account, nil
}

// Lookup returns the account by primary identifier only if it is active.
// Used on every authenticated request, so it stays a single indexed read.
func (s *AccountService) Lookup(id uint) (*models.Account, error) {
	account, err := s.store.GetAccountByID(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}
	return account, nil
}

// Provision creates the local account for a first-time provider identity.
// Twitter ID, screen name and name are mandatory; the admin allow-list
// decides the privilege level, and the account is always created active
// with an unusable password.
func (s *AccountService) Provision(
	ctx context.Context,
	profile *provider.Profile,
) (*models.Account, error) {
	if profile == nil || profile.ID == 0 || profile.ScreenName == "" || profile.Name == "" {
		return nil, ErrInvalidProfile
	}

	isAdmin := s.cfg.IsAdminTwitterID(profile.ID)
	account := &models.Account{
		TwitterID:       profile.ID,
		ScreenName:      profile.ScreenName,
		Name:            profile.Name,
		Description:     profile.Description,
		Location:        profile.Location,
		URL:             profile.URL,
		ProfileImageURL: profile.ProfileImageURL,
		Password:        models.UnusablePassword,
		IsActive:        true,
		IsSuperuser:     isAdmin,
		IsStaff:         isAdmin,
	}

	if err := s.store.CreateAccount(account); err != nil {
		return nil, err
	}

	role := RoleUser
	if isAdmin {
		role = RoleAdmin
	}
	s.metrics.RecordAccountProvisioned(role)
	s.audit.Log(ctx, AuditLogEntry{
		EventType:       models.EventAccountProvisioned,
		ActorID:         account.ID,
		ActorScreenName: account.ScreenName,
		Success:         true,
	})
	log.Printf("[Auth] New account provisioned: twitter_id=%d screen_name=%s role=%s",
		profile.ID, profile.ScreenName, role)

	return account, nil
}
