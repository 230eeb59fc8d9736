package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/01moynul/finmanager-golang/internal/ai"
	"github.com/01moynul/finmanager-golang/internal/models"
)

// Ledger supplies the transactions an account's assistant answers from.
type Ledger interface {
	Transactions(ctx context.Context, accountID string) []models.Transaction
}

// Registry holds one in-memory session per account.
type Registry struct {
	responder Responder
	ledger    Ledger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry(responder Responder, ledger Ledger) *Registry {
	return &Registry{
		responder: responder,
		ledger:    ledger,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the account's session, creating it on first use.
func (r *Registry) Session(ctx context.Context, accountID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[accountID]; ok {
		return s
	}
	s := NewSession(r.responder, r.ledger.Transactions(ctx, accountID), r.now)
	r.sessions[accountID] = s
	return s
}

// Reset discards the account's session; the next call starts over.
func (r *Registry) Reset(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, accountID)
}

// Ask answers a single question with no conversation history.
func (r *Registry) Ask(ctx context.Context, accountID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	prompt := ai.ChatPrompt(nil, r.ledger.Transactions(ctx, accountID), text)
	return r.responder.Chat(ctx, prompt), nil
}
