package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
)

// TokenStore caches one credential per subject and refreshes lazily on use.
// Refreshes are serialized per subject so concurrent callers never race two
// exchanges for the same credential. The store is owned by the orchestrator
// and handed to components by reference; nothing is persisted.
type TokenStore struct {
	exchanger     domain.IdentityExchanger
	authorizer    domain.Authorizer
	serviceScopes []string

	now func() time.Time

	serviceMu sync.Mutex
	service   *domain.Credential

	userMu sync.Mutex
	user   *domain.Credential
}

type TokenStoreDependencies struct {
	Exchanger     domain.IdentityExchanger
	Authorizer    domain.Authorizer
	ServiceScopes []string

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewTokenStore(deps TokenStoreDependencies) *TokenStore {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &TokenStore{
		exchanger:     deps.Exchanger,
		authorizer:    deps.Authorizer,
		serviceScopes: deps.ServiceScopes,
		now:           now,
	}
}

// ServiceCredential returns a valid service credential, performing a
// client-credentials exchange when the cached one is missing or expired.
func (s *TokenStore) ServiceCredential(ctx context.Context) (domain.Credential, error) {
	s.serviceMu.Lock()
	defer s.serviceMu.Unlock()

	if s.service != nil && !s.service.ExpiredAt(s.now()) {
		return *s.service, nil
	}

	cred, err := s.exchanger.ClientCredentials(ctx, s.serviceScopes)
	if err != nil {
		return domain.Credential{}, err
	}
	cred.Subject = domain.SubjectService

	log.Debug().
		Time("expires_at", cred.ExpiresAt).
		Msg("Service credential obtained")

	s.service = &cred
	return cred, nil
}

// UserCredential returns a valid user credential. An expired credential with
// a refresh token is refreshed; otherwise the interactive authorization-code
// flow runs and the store blocks until its one-shot callback fires.
func (s *TokenStore) UserCredential(ctx context.Context) (domain.Credential, error) {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	if s.user != nil && !s.user.ExpiredAt(s.now()) {
		return *s.user, nil
	}

	if s.user != nil && s.user.RefreshToken != "" {
		cred, err := s.refreshLocked(ctx, *s.user)
		if err != nil {
			return domain.Credential{}, err
		}
		return cred, nil
	}

	log.Info().Msg("No user credential cached, starting interactive login")

	cred, err := s.authorizer.Authorize(ctx)
	if err != nil {
		return domain.Credential{}, err
	}
	cred.Subject = domain.SubjectUser

	s.user = &cred
	return cred, nil
}

// Refresh exchanges the credential's refresh token for a new user credential
// and caches the replacement.
func (s *TokenStore) Refresh(ctx context.Context, cred domain.Credential) (domain.Credential, error) {
	s.userMu.Lock()
	defer s.userMu.Unlock()
	return s.refreshLocked(ctx, cred)
}

func (s *TokenStore) refreshLocked(ctx context.Context, cred domain.Credential) (domain.Credential, error) {
	next, err := s.exchanger.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return domain.Credential{}, err
	}
	next.Subject = domain.SubjectUser

	log.Debug().
		Time("expires_at", next.ExpiresAt).
		Msg("User credential refreshed")

	s.user = &next
	return next, nil
}
