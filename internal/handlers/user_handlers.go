package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/middleware"
	"github.com/storefront/catalog-api/internal/models"
)

// GetUserDetail handles GET /user/detail/
func (h *Handlers) GetUserDetail(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c).Detail())
}

// GetProfile handles GET /user/profile/
func (h *Handlers) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c).Profile())
}

// UpdateProfile handles PUT and PATCH /user/profile/
// Email and role flags in the body are ignored.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var input models.ProfileUpdate
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /user/password-change/
func (h *Handlers) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	err := h.Accounts.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), input.OldPassword, input.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
