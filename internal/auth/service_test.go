package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/store"
)

func newDemoService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(NewDemoProvider(s), s, issuer, nil), s
}

func TestDemoService_SignInAndOut(t *testing.T) {
	svc, s := newDemoService(t)
	ctx := context.Background()
	assert.True(t, svc.DemoMode())

	var events []AuthEvent
	unsubscribe := svc.OnAuthStateChange(func(ev AuthEvent, userID string, _ *models.Session) {
		assert.Equal(t, "demo-123", userID)
		events = append(events, ev)
	})
	defer unsubscribe()

	res, err := svc.SignIn(ctx, "anyone@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "demo@finmanager.ai", res.Session.User.Email)
	assert.True(t, res.Session.Demo)

	var demo models.User
	require.NoError(t, store.GetJSON(ctx, s, store.KeyDemoUser, &demo))
	assert.Equal(t, "demo-123", demo.ID)

	user, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "demo-123", user.ID)

	verified, err := svc.VerifyUser(ctx, "demo-123")
	require.NoError(t, err)
	assert.Equal(t, "demo@finmanager.ai", verified.Email)

	require.NoError(t, svc.SignOut(ctx, "demo-123"))
	_, err = s.Get(ctx, store.KeyDemoUser)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNoSession, "tokens die with their session")

	assert.Equal(t, []AuthEvent{EventSignedIn, EventSignedOut}, events)
}

func TestDemoService_SignUpAndPasswordRejected(t *testing.T) {
	svc, _ := newDemoService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "new@example.com", "secret123")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Supabase not configured. Cannot create real accounts.", perr.Message)

	_, err = svc.SignIn(ctx, "x", "y")
	require.NoError(t, err)
	err = svc.UpdatePassword(ctx, "demo-123", "newpassword")
	assert.ErrorIs(t, err, ErrDemoMode)
	assert.Equal(t, "Cannot update password in Demo Mode.", err.Error())
}

func TestService_SignOutWithoutSessionIsNoop(t *testing.T) {
	svc, _ := newDemoService(t)
	assert.NoError(t, svc.SignOut(context.Background(), "nobody"))
}

func TestService_ExpiredSession(t *testing.T) {
	svc, s := newDemoService(t)
	ctx := context.Background()

	stale := models.Session{AccessToken: "a", User: models.User{ID: "u1"}, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.SetJSON(ctx, s, store.SessionKey("u1"), stale.Stored()))

	_, err := svc.GetSession(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestService_OnAuthStateChangeUnsubscribe(t *testing.T) {
	svc, _ := newDemoService(t)
	calls := 0
	unsubscribe := svc.OnAuthStateChange(func(AuthEvent, string, *models.Session) { calls++ })

	_, err := svc.SignIn(context.Background(), "a", "b")
	require.NoError(t, err)
	unsubscribe()
	require.NoError(t, svc.SignOut(context.Background(), "demo-123"))

	assert.Equal(t, 1, calls)
}
