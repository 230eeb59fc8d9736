package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/01moynul/finmanager-golang/internal/models"
)

var (
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("ai: empty response")
	// ErrMissingAPIKey means the Gemini backend was selected without a key.
	ErrMissingAPIKey = errors.New("ai: gemini api key not configured")
)

// Completer turns a prompt into text. Implementations report every failure
// as an error; converting errors into user-facing text is the Gateway's job.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BackendFactory builds the Completer for a configuration.
type BackendFactory func(ctx context.Context, cfg models.AIConfig) (Completer, error)

// NewBackendFactory returns the default factory. httpClient is used by the
// Ollama backend; nil means http.DefaultClient.
func NewBackendFactory(httpClient *http.Client) BackendFactory {
	return func(ctx context.Context, cfg models.AIConfig) (Completer, error) {
		return NewBackend(ctx, cfg, httpClient)
	}
}

// NewBackend selects the backend for cfg.Provider.
func NewBackend(ctx context.Context, cfg models.AIConfig, httpClient *http.Client) (Completer, error) {
	switch cfg.Provider {
	case models.ProviderOllama:
		return NewOllamaBackend(cfg.OllamaURL, cfg.OllamaModel, httpClient), nil
	case models.ProviderGemini, "":
		return NewGeminiBackend(ctx, cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
