package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// IdentityProvider is the opaque external identity provider (the BaaS auth
// surface). Every call is network-bound and returns the provider's error
// verbatim wrapped; callers decide how to surface it.
type IdentityProvider interface {
	// CurrentSession resolves the identity behind an access token.
	// Returns nil identity (no error) when the token is empty or stale.
	CurrentSession(ctx context.Context, accessToken string) (*entity.Identity, error)

	// SignInWithPassword performs the password grant.
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error)

	// SendMagicLink sends a one-time sign-in link to the given email.
	// redirectTo is the completion endpoint the link lands on.
	SendMagicLink(ctx context.Context, email, redirectTo string) error

	// SignUp registers a new user with email and password.
	SignUp(ctx context.Context, email, password string) (*entity.Session, error)

	// SendPasswordReset sends a password-recovery email.
	SendPasswordReset(ctx context.Context, email string) error

	// UpdateProfile patches the identity's profile metadata.
	UpdateProfile(ctx context.Context, accessToken string, update entity.ProfileUpdate) (*entity.Identity, error)

	// SignOut revokes the session behind the token. Best effort: callers
	// must clear local state regardless of the returned error.
	SignOut(ctx context.Context, accessToken string) error

	// AuthorizeURL builds the OAuth redirect URL for an external provider.
	AuthorizeURL(provider, redirectTo string) string

	// ExchangeCode trades an authorization code for a session. The PKCE
	// code verifier is assumed to be managed provider-side; only the code
	// crosses this boundary.
	ExchangeCode(ctx context.Context, code string) (*entity.Session, error)
}
