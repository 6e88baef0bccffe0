package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/models"
)

// ListCategories handles GET /categories/
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /categories/:id/
func (h *Handlers) GetCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	category, err := h.Store.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /categories/
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	category, err := h.Store.CreateCategory(c.Request.Context(), input, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT and PATCH /categories/:id/
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.CategoryInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	category, err := h.Store.UpdateCategory(c.Request.Context(), id, input, c.Request.Method == http.MethodPatch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:id/
// Its products and their stock rows go with it, unless any of them still
// holds stock.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Store.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
