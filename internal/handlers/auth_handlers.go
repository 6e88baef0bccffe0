package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/auth"
	"github.com/storefront/catalog-api/internal/middleware"
)

// --- User Registration ---

// RegisterInput is what a new user sends. Email format and password
// policy are checked by the account service so every problem comes back
// keyed by field.
type RegisterInput struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=128"`
	LastName  string `json:"last_name" binding:"max=128"`
}

// Register handles POST /auth/register/
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	// 2. --- Create the account ---
	user, err := h.Accounts.Register(c.Request.Context(), auth.Registration{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user.Detail(),
	})
}

// --- User Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login/
// It returns an access/refresh pair and the user summary.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Accounts.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TokenInput carries a single token for logout and verify.
type TokenInput struct {
	Token string `json:"token" binding:"required"`
}

// Logout handles POST /auth/logout/
// The refresh token in the body must belong to the caller.
func (h *Handlers) Logout(c *gin.Context) {
	var input TokenInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	if err := h.Accounts.Logout(c.Request.Context(), middleware.CurrentUser(c), input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

// RefreshToken handles POST /auth/token/refresh/
func (h *Handlers) RefreshToken(c *gin.Context) {
	var input RefreshInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	access, err := h.Tokens.Refresh(c.Request.Context(), input.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// VerifyToken handles POST /auth/token/verify/
// A valid token answers with an empty object.
func (h *Handlers) VerifyToken(c *gin.Context) {
	var input TokenInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	if err := h.Tokens.Verify(c.Request.Context(), input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
