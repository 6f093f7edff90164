package domain

import (
	"context"
	"time"
)

// Subject identifies which authentication flow produced a credential.
type Subject string

const (
	SubjectService Subject = "service"
	SubjectUser    Subject = "user"
)

// Credential is a time-boxed access token for one subject. Expired
// credentials are replaced by the token store, never mutated in place.
type Credential struct {
	Subject      Subject
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the credential is unusable at the given instant.
func (c Credential) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// AuthorizationHeader returns the value for an Authorization header.
func (c Credential) AuthorizationHeader() string {
	return "Bearer " + c.AccessToken
}

// IdentityExchanger performs token exchanges against the remote identity
// service. Implementations map transport failures to *AuthError.
type IdentityExchanger interface {
	// ClientCredentials obtains a service credential for the given scopes.
	ClientCredentials(ctx context.Context, scopes []string) (Credential, error)

	// ExchangeCode trades a one-time authorization code for a user credential.
	ExchangeCode(ctx context.Context, code string) (Credential, error)

	// Refresh trades a refresh token for a new user credential without an
	// interactive login.
	Refresh(ctx context.Context, refreshToken string) (Credential, error)
}

// Authorizer runs the interactive authorization-code flow. Authorize blocks
// until the external listener delivers a credential or the flow fails.
type Authorizer interface {
	Authorize(ctx context.Context) (Credential, error)
}

// CredentialSource hands out a valid credential, refreshing lazily on use.
type CredentialSource func(ctx context.Context) (Credential, error)
