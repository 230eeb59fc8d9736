package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// aiSettingsResponse never echoes the Gemini key back.
type aiSettingsResponse struct {
	Provider     models.AIProvider `json:"provider"`
	HasGeminiKey bool              `json:"hasGeminiKey"`
	OllamaURL    string            `json:"ollamaUrl"`
	OllamaModel  string            `json:"ollamaModel"`
}

func newAISettingsResponse(cfg models.AIConfig) aiSettingsResponse {
	return aiSettingsResponse{
		Provider:     cfg.Provider,
		HasGeminiKey: cfg.GeminiAPIKey != "",
		OllamaURL:    cfg.OllamaURL,
		OllamaModel:  cfg.OllamaModel,
	}
}

// GetAISettings returns the active language-model configuration.
func (h *Handlers) GetAISettings(c *gin.Context) {
	c.JSON(http.StatusOK, newAISettingsResponse(h.Settings.Load(c.Request.Context())))
}

// UpdateAISettings applies a partial configuration update. Omitted fields
// keep their stored values.
func (h *Handlers) UpdateAISettings(c *gin.Context) {
	var patch models.AIConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.Settings.Update(c.Request.Context(), patch)
	if err != nil {
		h.Logger.Error("saving ai settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save AI settings"})
		return
	}
	c.JSON(http.StatusOK, newAISettingsResponse(cfg))
}
