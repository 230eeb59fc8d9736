package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/assistant"
)

const limitReachedMessage = "You've reached your daily limit of free AI queries. Upgrade to Pro for unlimited access."

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required"`
}

// consumeAIQuery charges one AI request to the caller, writing the error
// response itself when the request must not proceed.
func (h *Handlers) consumeAIQuery(c *gin.Context, userID string) bool {
	ok, err := h.Usage.TryConsume(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("usage check failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not check your AI usage"})
		return false
	}
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": limitReachedMessage,
			"limit": h.Usage.Limit(),
		})
		return false
	}
	return true
}

// bindMessage reads a non-blank chat message.
func bindMessage(c *gin.Context) (string, bool) {
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	if strings.TrimSpace(input.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": assistant.ErrEmptyMessage.Error()})
		return "", false
	}
	return input.Message, true
}

// --- Chat ---

// ChatAI sends a message in the caller's assistant conversation.
func (h *Handlers) ChatAI(c *gin.Context) {
	// 1. Get User Context (set by AuthMiddleware)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// 2. Parse Input
	message, ok := bindMessage(c)
	if !ok {
		return
	}

	// 3. Check and charge the daily allowance
	if !h.consumeAIQuery(c, userID) {
		return
	}

	// 4. Ask the assistant; failures come back as fallback text
	ctx := c.Request.Context()
	user, reply, err := h.Assistant.Session(ctx, userID).Send(ctx, message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.Logger.Error("chat failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed"})
		return
	}

	// 5. Return both messages and the remaining allowance
	resp := gin.H{
		"message": user,
		"reply":   reply,
	}
	if report, err := h.Usage.Usage(ctx, userID); err != nil {
		h.Logger.Warn("usage report failed", zap.String("user", userID), zap.Error(err))
	} else {
		resp["usage"] = report
	}
	c.JSON(http.StatusOK, resp)
}

// GetChat returns the caller's conversation.
func (h *Handlers) GetChat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": h.Assistant.Session(c.Request.Context(), userID).Messages()})
}

// ResetChat discards the caller's conversation.
func (h *Handlers) ResetChat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.Assistant.Reset(userID)
	c.Status(http.StatusNoContent)
}

// --- One-shot question ---

// AskAI answers a single dashboard question without chat history.
func (h *Handlers) AskAI(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	message, ok := bindMessage(c)
	if !ok {
		return
	}
	if !h.consumeAIQuery(c, userID) {
		return
	}

	answer, err := h.Assistant.Ask(c.Request.Context(), userID, message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// --- Usage ---

// GetAIUsage returns today's AI usage for the caller.
func (h *Handlers) GetAIUsage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	report, err := h.Usage.Usage(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("usage report failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load your AI usage"})
		return
	}
	c.JSON(http.StatusOK, report)
}
