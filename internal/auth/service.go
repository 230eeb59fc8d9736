// Package auth signs users in through an identity provider and issues the
// bearer tokens the API accepts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/store"
)

// AuthEvent names a sign-in state change.
type AuthEvent string

const (
	EventSignedIn    AuthEvent = "SIGNED_IN"
	EventSignedOut   AuthEvent = "SIGNED_OUT"
	EventUserUpdated AuthEvent = "USER_UPDATED"
)

// AuthStateListener is told about sign-in state changes. session is nil
// after sign-out.
type AuthStateListener func(event AuthEvent, userID string, session *models.Session)

// LoginResult is returned to a client that signed in.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Session   models.Session `json:"session"`
}

// Service keeps server-side sessions and issues API tokens.
type Service struct {
	provider IdentityProvider
	store    store.Store
	tokens   *TokenIssuer
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	next      int
	listeners map[int]AuthStateListener
}

// NewService wires the identity provider to session storage and tokens.
func NewService(provider IdentityProvider, s store.Store, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:  provider,
		store:     s,
		tokens:    tokens,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]AuthStateListener),
	}
}

// DemoMode reports whether sign-ins go to the offline demo provider.
func (s *Service) DemoMode() bool { return s.provider.Demo() }

// SignIn authenticates with the provider and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (LoginResult, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	return s.start(ctx, session)
}

// SignUp registers a user. The result is nil when the provider wants the
// email confirmed before the first sign-in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*LoginResult, models.User, error) {
	session, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, models.User{}, err
	}
	if session.AccessToken == "" {
		s.logger.Info("user registered, confirmation pending", zap.String("user", session.User.ID))
		return nil, session.User, nil
	}
	res, err := s.start(ctx, session)
	if err != nil {
		return nil, models.User{}, err
	}
	return &res, session.User, nil
}

func (s *Service) start(ctx context.Context, session models.Session) (LoginResult, error) {
	if err := store.SetJSON(ctx, s.store, store.SessionKey(session.User.ID), session.Stored()); err != nil {
		return LoginResult{}, fmt.Errorf("save session: %w", err)
	}
	token, expiresAt, err := s.tokens.GenerateToken(session.User)
	if err != nil {
		return LoginResult{}, err
	}

	s.logger.Info("user signed in", zap.String("user", session.User.ID), zap.Bool("demo", session.Demo))
	s.emit(EventSignedIn, session.User.ID, &session)
	return LoginResult{Token: token, ExpiresAt: expiresAt, Session: session}, nil
}

// GetSession returns the user's active session.
func (s *Service) GetSession(ctx context.Context, userID string) (models.Session, error) {
	var stored models.StoredSession
	err := store.GetJSON(ctx, s.store, store.SessionKey(userID), &stored)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, ErrNoSession
	}
	if err != nil {
		return models.Session{}, err
	}

	session := stored.Session()
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(s.now()) {
		return models.Session{}, ErrNoSession
	}
	return session, nil
}

// Authenticate validates an API token and returns its user, provided the
// session it was issued for is still open.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return models.User{}, err
	}
	session, err := s.GetSession(ctx, claims.UserID())
	if err != nil {
		return models.User{}, err
	}
	return session.User, nil
}

// VerifyUser asks the provider to confirm the session still belongs to a user.
func (s *Service) VerifyUser(ctx context.Context, userID string) (models.User, error) {
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return s.provider.GetUser(ctx, session)
}

// SignOut ends the user's session with the provider and locally.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	session, err := s.GetSession(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	if err == nil {
		if err := s.provider.SignOut(ctx, session); err != nil {
			// The local session is dropped regardless.
			s.logger.Warn("provider sign-out failed", zap.String("user", userID), zap.Error(err))
		}
	}
	if err := s.store.Delete(ctx, store.SessionKey(userID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("user signed out", zap.String("user", userID))
	s.emit(EventSignedOut, userID, nil)
	return nil
}

// UpdatePassword changes the signed-in user's password.
func (s *Service) UpdatePassword(ctx context.Context, userID, password string) error {
	if s.provider.Demo() {
		return ErrDemoMode
	}
	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.provider.UpdateUser(ctx, session, password); err != nil {
		return err
	}
	s.emit(EventUserUpdated, userID, &session)
	return nil
}

// OnAuthStateChange registers fn and returns a func that removes it.
func (s *Service) OnAuthStateChange(fn AuthStateListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) emit(event AuthEvent, userID string, session *models.Session) {
	s.mu.RLock()
	fns := make([]AuthStateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event, userID, session)
	}
}
