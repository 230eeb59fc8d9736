package ai

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// Fallback is the text returned instead of an error at a call site.
type Fallback struct {
	OnError string // transport, configuration or provider failure
	OnEmpty string // provider answered without text
}

var (
	ChatFallback = Fallback{
		OnError: "Sorry, I'm having trouble connecting to the brain right now.",
		OnEmpty: "I didn't catch that.",
	}
	InsightsFallback = Fallback{
		OnError: "Unable to generate insights at this moment.",
		OnEmpty: "Could not generate insights.",
	}
)

// Gateway dispatches prompts to the backend selected by the configuration
// and never lets a failure escape to the caller.
type Gateway struct {
	factory BackendFactory
	logger  *zap.Logger

	mu      sync.Mutex
	cfg     models.AIConfig
	current *lease
}

// lease counts the calls using a backend. A replaced backend is closed once
// its last call returns.
type lease struct {
	backend Completer
	refs    int
	retired bool
}

// NewGateway returns a Gateway that builds backends with factory.
func NewGateway(factory BackendFactory, logger *zap.Logger) *Gateway {
	if factory == nil {
		factory = NewBackendFactory(nil)
	}
	return &Gateway{factory: factory, logger: logger}
}

// Complete returns the backend's text for prompt, or the matching fallback text.
func (g *Gateway) Complete(ctx context.Context, cfg models.AIConfig, prompt string, fb Fallback) string {
	l, err := g.acquire(ctx, cfg)
	if err != nil {
		g.logger.Error("ai backend unavailable", zap.String("provider", string(cfg.Provider)), zap.Error(err))
		return fb.OnError
	}
	defer g.release(l)

	text, err := l.backend.Complete(ctx, prompt)
	switch {
	case errors.Is(err, ErrEmptyResponse):
		g.logger.Warn("ai provider returned no text", zap.String("provider", string(cfg.Provider)))
		return fb.OnEmpty
	case err != nil:
		g.logger.Error("ai completion failed", zap.String("provider", string(cfg.Provider)), zap.Error(err))
		return fb.OnError
	}
	return text
}

// acquire reuses the cached backend while the configuration is unchanged.
func (g *Gateway) acquire(ctx context.Context, cfg models.AIConfig) (*lease, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil || g.cfg != cfg {
		backend, err := g.factory(ctx, cfg)
		if err != nil {
			return nil, err
		}
		g.retireLocked()
		g.cfg, g.current = cfg, &lease{backend: backend}
		g.logger.Debug("ai backend selected", zap.String("provider", string(cfg.Provider)))
	}
	g.current.refs++
	return g.current, nil
}

func (g *Gateway) release(l *lease) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.retired && l.refs == 0 {
		g.closeBackend(l.backend)
	}
}

// Reset drops the cached backend so the next call rebuilds it. Calls still
// running keep their backend until they return.
func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retireLocked()
}

func (g *Gateway) retireLocked() {
	if g.current == nil {
		return
	}
	l := g.current
	g.current = nil
	l.retired = true
	if l.refs == 0 {
		g.closeBackend(l.backend)
	}
}

func (g *Gateway) closeBackend(backend Completer) {
	if c, ok := backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			g.logger.Warn("closing ai backend", zap.Error(err))
		}
	}
}
