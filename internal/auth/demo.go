package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/store"
)

// DemoUser is the identity every demo sign-in receives.
var DemoUser = models.User{
	ID:    "demo-123",
	Email: "demo@finmanager.ai",
	Aud:   "authenticated",
}

// DemoProvider stands in for the identity service when none is configured.
// Any credentials sign in as DemoUser.
type DemoProvider struct {
	store store.Store
	now   func() time.Time
}

// NewDemoProvider persists the demo user in s.
func NewDemoProvider(s store.Store) *DemoProvider {
	return &DemoProvider{store: s, now: time.Now}
}

func (p *DemoProvider) SignInWithPassword(ctx context.Context, _, _ string) (models.Session, error) {
	user := DemoUser
	user.CreatedAt = p.now().UTC()
	if err := store.SetJSON(ctx, p.store, store.KeyDemoUser, user); err != nil {
		return models.Session{}, fmt.Errorf("save demo user: %w", err)
	}
	return models.Session{User: user, Demo: true}, nil
}

func (p *DemoProvider) SignUp(context.Context, string, string) (models.Session, error) {
	return models.Session{}, ErrSignUpUnavailable
}

func (p *DemoProvider) SignOut(ctx context.Context, _ models.Session) error {
	return p.store.Delete(ctx, store.KeyDemoUser)
}

// GetUser returns the stored demo user, or ErrNoSession after sign-out.
func (p *DemoProvider) GetUser(ctx context.Context, _ models.Session) (models.User, error) {
	var user models.User
	err := store.GetJSON(ctx, p.store, store.KeyDemoUser, &user)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrNoSession
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (p *DemoProvider) UpdateUser(context.Context, models.Session, string) error {
	return ErrDemoMode
}

func (p *DemoProvider) Demo() bool { return true }
