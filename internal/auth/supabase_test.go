package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/finmanager-golang/internal/store"
)

type fakeGoTrue struct {
	t         *testing.T
	password  string
	confirm   bool
	loggedOut bool
}

func (f *fakeGoTrue) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "anon-key", r.Header.Get("apikey"))
	w.Header().Set("Content-Type", "application/json")

	user := map[string]any{"id": "user-1", "email": "a@example.com", "aud": "authenticated", "created_at": "2024-10-01T10:00:00.123456Z"}
	session := map[string]any{"access_token": "at-1", "refresh_token": "rt-1", "expires_in": 3600, "user": user}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
		assert.Equal(f.t, "password", r.URL.Query().Get("grant_type"))
		var c credentials
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&c))
		if c.Password != f.password {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(session)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/signup":
		if f.confirm {
			json.NewEncoder(w).Encode(user)
			return
		}
		json.NewEncoder(w).Encode(session)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/logout":
		assert.Equal(f.t, "Bearer at-1", r.Header.Get("Authorization"))
		f.loggedOut = true
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/user":
		json.NewEncoder(w).Encode(user)
	case r.Method == http.MethodPut && r.URL.Path == "/auth/v1/user":
		var body map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		if len(body["password"]) < 6 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":"weak_password","error_description":"Password should be at least 6 characters."}`))
			return
		}
		f.password = body["password"]
		json.NewEncoder(w).Encode(user)
	default:
		http.NotFound(w, r)
	}
}

func newSupabaseService(t *testing.T, fake *fakeGoTrue) *Service {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(NewSupabaseProvider(srv.URL+"/", "anon-key", srv.Client()), store.NewMemoryStore(), issuer, nil)
}

func TestSupabase_SignInFlow(t *testing.T) {
	fake := &fakeGoTrue{t: t, password: "secret123"}
	svc := newSupabaseService(t, fake)
	ctx := context.Background()
	assert.False(t, svc.DemoMode())

	res, err := svc.SignIn(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", res.Session.User.ID)
	assert.Equal(t, "at-1", res.Session.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.Session.ExpiresAt, 5*time.Second)

	user, err := svc.VerifyUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	require.NoError(t, svc.UpdatePassword(ctx, "user-1", "newsecret"))
	assert.Equal(t, "newsecret", fake.password)

	require.NoError(t, svc.SignOut(ctx, "user-1"))
	assert.True(t, fake.loggedOut)
}

func TestSupabase_ErrorsSurfaceVerbatim(t *testing.T) {
	svc := newSupabaseService(t, &fakeGoTrue{t: t, password: "secret123"})
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "a@example.com", "wrong")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "Invalid login credentials", perr.Message)

	_, err = svc.SignIn(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	err = svc.UpdatePassword(ctx, "user-1", "123")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Password should be at least 6 characters.", perr.Message)
}

func TestSupabase_SignUp(t *testing.T) {
	ctx := context.Background()

	svc := newSupabaseService(t, &fakeGoTrue{t: t})
	res, user, err := svc.SignUp(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "user-1", user.ID)

	pending := newSupabaseService(t, &fakeGoTrue{t: t, confirm: true})
	res, user, err = pending.SignUp(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Nil(t, res, "confirmation required before the first session")
	assert.Equal(t, "a@example.com", user.Email)
}

func TestSupabase_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewSupabaseProvider(url, "anon-key", nil)
	_, err := p.SignInWithPassword(context.Background(), "a@example.com", "x")
	assert.Error(t, err)
	var perr *ProviderError
	assert.False(t, errors.As(err, &perr))
}
