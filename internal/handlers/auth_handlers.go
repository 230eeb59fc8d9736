package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/auth"
)

// --- Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login signs the user in and returns an API token.
func (h *Handlers) Login(c *gin.Context) {
	// 1. Bind & validate.
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. Authenticate with the identity provider.
	res, err := h.Auth.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondAuthError(c, http.StatusUnauthorized, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// --- Registration ---

type RegisterInput struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// Register creates an account with the identity provider.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		msg := err.Error()
		if isFieldError(err, "ConfirmPassword", "eqfield") {
			msg = "Passwords don't match"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	res, user, err := h.Auth.SignUp(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondAuthError(c, http.StatusBadRequest, err)
		return
	}

	// Some projects require the email to be confirmed first.
	if res == nil {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Check your email to confirm your account.",
			"user":    user,
		})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// --- Session ---

// Logout ends the caller's session.
func (h *Handlers) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.Auth.SignOut(c.Request.Context(), userID); err != nil {
		h.Logger.Error("sign out failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetSession returns the caller's session.
func (h *Handlers) GetSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	session, err := h.Auth.GetSession(c.Request.Context(), userID)
	if err != nil {
		h.respondAuthError(c, http.StatusUnauthorized, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "demo": h.Auth.DemoMode()})
}

// --- Password ---

type UpdatePasswordInput struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UpdatePassword changes the caller's password.
func (h *Handlers) UpdatePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input UpdatePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Auth.UpdatePassword(c.Request.Context(), userID, input.Password); err != nil {
		h.respondAuthError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully!"})
}

// respondAuthError surfaces identity provider messages verbatim.
func (h *Handlers) respondAuthError(c *gin.Context, status int, err error) {
	var perr *auth.ProviderError
	switch {
	case errors.As(err, &perr):
		if perr.Status == http.StatusForbidden {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": perr.Message})
	case errors.Is(err, auth.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
	default:
		h.Logger.Error("identity provider unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identity service unavailable"})
	}
}
