// Package store is the persisted key/value store behind AI settings,
// subscriptions, usage counters and identity sessions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// Persisted keys.
const (
	KeyAIConfig           = "ai_config"
	KeyDemoUser           = "demo_user"
	keySubscriptionPrefix = "finmanager_subscription:"
	keyUsagePrefix        = "finmanager_ai_usage:"
	keySessionPrefix      = "auth_session:"
)

// SubscriptionKey is the key of an account's subscription record.
func SubscriptionKey(accountID string) string { return keySubscriptionPrefix + accountID }

// SubscriptionPrefix is the common prefix of all subscription keys.
func SubscriptionPrefix() string { return keySubscriptionPrefix }

// UsageKey is the key of an account's daily usage counter.
func UsageKey(accountID string) string { return keyUsagePrefix + accountID }

// SessionKey is the key of a user's identity session.
func SessionKey(userID string) string { return keySessionPrefix + userID }

// UpdateFunc receives the current value of a key and returns the value to write.
// Returning a nil slice with a nil error leaves the key untouched.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Store is a durable key/value store. Writes are durable before they return.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Keys lists the keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Subscribe registers fn to be called after every write to key. Deletes
	// are reported with a nil value. The returned func removes the subscription.
	Subscribe(key string, fn func(value []byte)) (unsubscribe func())
}

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

type watchers struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func([]byte)
}

func (w *watchers) subscribe(key string, fn func([]byte)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subs == nil {
		w.subs = make(map[string]map[int]func([]byte))
	}
	if w.subs[key] == nil {
		w.subs[key] = make(map[int]func([]byte))
	}
	id := w.next
	w.next++
	w.subs[key][id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs[key], id)
	}
}

func (w *watchers) notify(key string, value []byte) {
	w.mu.RLock()
	fns := make([]func([]byte), 0, len(w.subs[key]))
	for _, fn := range w.subs[key] {
		fns = append(fns, fn)
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn(value)
	}
}
