package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/auth"
)

// CreateStaffInput defines the JSON input for creating a staff account.
type CreateStaffInput struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=128"`
	LastName  string `json:"last_name" binding:"max=128"`
}

// CreateStaff handles POST /admin/staff/
// Only superusers reach it; the new account can write to the catalog.
func (h *Handlers) CreateStaff(c *gin.Context) {
	var input CreateStaffInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Accounts.CreateStaff(c.Request.Context(), auth.Registration{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Staff user created successfully",
		"user":    user.Detail(),
	})
}
