package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// ErrNoSession means the user is not signed in.
var ErrNoSession = errors.New("auth: no active session")

var (
	// ErrDemoMode is returned for operations that need a real identity provider.
	ErrDemoMode = &ProviderError{Status: http.StatusForbidden, Message: "Cannot update password in Demo Mode."}
	// ErrSignUpUnavailable is returned by the demo provider's SignUp.
	ErrSignUpUnavailable = &ProviderError{Status: http.StatusBadRequest, Message: "Supabase not configured. Cannot create real accounts."}
)

// ProviderError carries an identity provider's error message verbatim.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// IdentityProvider signs users in and out. Sessions it returns carry the
// provider's own tokens, which never leave the server.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (models.Session, error)
	// SignUp returns a session without an access token when the provider
	// requires email confirmation first.
	SignUp(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context, session models.Session) error
	GetUser(ctx context.Context, session models.Session) (models.User, error)
	UpdateUser(ctx context.Context, session models.Session, password string) error
	// Demo reports whether this provider is the offline stand-in.
	Demo() bool
}
