package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a process-local Store. Values are copied on the way in and out.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	w    watchers
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = clone(value)
	m.mu.Unlock()
	m.w.notify(key, clone(value))
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	m.w.notify(key, nil)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	current, found := m.data[key]
	next, err := fn(clone(current), found)
	if err != nil || next == nil {
		m.mu.Unlock()
		return err
	}
	m.data[key] = clone(next)
	m.mu.Unlock()
	m.w.notify(key, clone(next))
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Subscribe(key string, fn func([]byte)) func() {
	return m.w.subscribe(key, fn)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
