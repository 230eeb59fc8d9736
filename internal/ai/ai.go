package ai

import (
	"context"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// ConfigSource supplies the current AI configuration.
type ConfigSource interface {
	Load(ctx context.Context) models.AIConfig
}

// AIService answers chat prompts and generates insights with the stored
// provider configuration.
type AIService struct {
	config  ConfigSource
	gateway *Gateway
}

// NewAIService wires the configuration source to the gateway.
func NewAIService(config ConfigSource, gateway *Gateway) *AIService {
	return &AIService{config: config, gateway: gateway}
}

// Chat completes an already flattened chat prompt.
func (s *AIService) Chat(ctx context.Context, prompt string) string {
	return s.gateway.Complete(ctx, s.config.Load(ctx), prompt, ChatFallback)
}

// Insights asks for spending recommendations over the given data.
func (s *AIService) Insights(ctx context.Context, transactions []models.Transaction, budgets []models.Budget) string {
	return s.gateway.Complete(ctx, s.config.Load(ctx), InsightsPrompt(transactions, budgets), InsightsFallback)
}
