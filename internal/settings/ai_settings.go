// Package settings persists the installation-wide AI provider configuration.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/store"
)

// AISettings loads and saves the AIConfig record.
type AISettings struct {
	store    store.Store
	defaults models.AIConfig
	logger   *zap.Logger
}

// DefaultAIConfig returns the hard-coded defaults, using geminiKey as the
// initial Gemini API key.
func DefaultAIConfig(geminiKey string) models.AIConfig {
	return models.AIConfig{
		Provider:     models.ProviderGemini,
		GeminiAPIKey: geminiKey,
		OllamaURL:    "http://localhost:11434",
		OllamaModel:  "llama3",
	}
}

// NewAISettings returns settings backed by s with the given defaults.
func NewAISettings(s store.Store, defaults models.AIConfig, logger *zap.Logger) *AISettings {
	return &AISettings{store: s, defaults: defaults, logger: logger}
}

// Defaults returns the configuration used when nothing has been saved.
func (a *AISettings) Defaults() models.AIConfig {
	return a.defaults
}

// Load returns the saved configuration merged over the defaults. It never
// fails: unreadable storage or a corrupt record yields the defaults.
func (a *AISettings) Load(ctx context.Context) models.AIConfig {
	data, err := a.store.Get(ctx, store.KeyAIConfig)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("ai config unavailable, using defaults", zap.Error(err))
		}
		return a.defaults
	}
	return a.merge(data)
}

func (a *AISettings) merge(data []byte) models.AIConfig {
	// Decoding onto a copy of the defaults keeps every field the record lacks.
	cfg := a.defaults
	if err := json.Unmarshal(data, &cfg); err != nil {
		a.logger.Warn("ai config corrupt, using defaults", zap.Error(err))
		return a.defaults
	}
	return cfg
}

// Save overwrites the stored record with cfg.
func (a *AISettings) Save(ctx context.Context, cfg models.AIConfig) error {
	if err := store.SetJSON(ctx, a.store, store.KeyAIConfig, cfg); err != nil {
		return fmt.Errorf("save ai config: %w", err)
	}
	return nil
}

// Update applies patch over the current configuration and saves the result.
func (a *AISettings) Update(ctx context.Context, patch models.AIConfigPatch) (models.AIConfig, error) {
	cfg := patch.Apply(a.Load(ctx))
	if err := a.Save(ctx, cfg); err != nil {
		return models.AIConfig{}, err
	}
	return cfg, nil
}

// OnChange calls fn with the merged configuration after every write.
func (a *AISettings) OnChange(fn func(models.AIConfig)) (unsubscribe func()) {
	return a.store.Subscribe(store.KeyAIConfig, func(data []byte) {
		if data == nil {
			fn(a.defaults)
			return
		}
		fn(a.merge(data))
	})
}
