// Package assistant keeps the per-account chat with the finance assistant.
package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/01moynul/finmanager-golang/internal/ai"
	"github.com/01moynul/finmanager-golang/internal/models"
)

// WelcomeMessage seeds every new session.
const WelcomeMessage = "Hello! 👋 I've analyzed your transactions for October. Ask me about your spending!"

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("assistant: message is empty")

// Responder answers a flattened chat prompt. It never fails; errors are
// already turned into fallback text.
type Responder interface {
	Chat(ctx context.Context, prompt string) string
}

// Session is an append-only conversation. Sends are processed one at a
// time; Messages may be read while a send is waiting on the model.
type Session struct {
	responder    Responder
	transactions []models.Transaction
	now          func() time.Time

	sendMu sync.Mutex

	mu       sync.RWMutex
	messages []models.ChatMessage
}

// NewSession returns a session seeded with the welcome message. The
// transactions are the context the assistant answers from.
func NewSession(responder Responder, transactions []models.Transaction, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{responder: responder, transactions: transactions, now: now}
	s.messages = []models.ChatMessage{s.message(models.RoleModel, WelcomeMessage)}
	return s
}

// Send appends the user's message, asks the model and appends its reply.
func (s *Session) Send(ctx context.Context, text string) (user, reply models.ChatMessage, err error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, models.ChatMessage{}, ErrEmptyMessage
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	user = s.message(models.RoleUser, text)
	s.mu.Lock()
	history := append([]models.ChatMessage(nil), s.messages...)
	s.messages = append(s.messages, user)
	s.mu.Unlock()

	answer := s.responder.Chat(ctx, ai.ChatPrompt(history, s.transactions, text))

	reply = s.message(models.RoleModel, answer)
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()
	return user, reply, nil
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

func (s *Session) message(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: s.now(),
	}
}
