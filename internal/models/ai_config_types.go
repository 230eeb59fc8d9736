package models

// AIProvider selects the text-completion backend.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderOllama AIProvider = "ollama"
)

// AIConfig is the installation-wide AI provider configuration stored under 'ai_config'.
type AIConfig struct {
	Provider     AIProvider `json:"provider"`
	GeminiAPIKey string     `json:"geminiApiKey"`
	OllamaURL    string     `json:"ollamaUrl"`
	OllamaModel  string     `json:"ollamaModel"`
}

// AIConfigPatch is a partial update; nil fields keep their current value.
type AIConfigPatch struct {
	Provider     *AIProvider `json:"provider"`
	GeminiAPIKey *string     `json:"geminiApiKey"`
	OllamaURL    *string     `json:"ollamaUrl"`
	OllamaModel  *string     `json:"ollamaModel"`
}

// Apply returns cfg with every non-nil patch field copied over it.
func (p AIConfigPatch) Apply(cfg AIConfig) AIConfig {
	if p.Provider != nil {
		cfg.Provider = *p.Provider
	}
	if p.GeminiAPIKey != nil {
		cfg.GeminiAPIKey = *p.GeminiAPIKey
	}
	if p.OllamaURL != nil {
		cfg.OllamaURL = *p.OllamaURL
	}
	if p.OllamaModel != nil {
		cfg.OllamaModel = *p.OllamaModel
	}
	return cfg
}
