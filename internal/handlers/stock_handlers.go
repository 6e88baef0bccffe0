package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/models"
)

// ListStocks handles GET /stocks/
func (h *Handlers) ListStocks(c *gin.Context) {
	stocks, err := h.Store.ListStocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

// GetStock handles GET /stocks/:id/
func (h *Handlers) GetStock(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	stock, err := h.Store.GetStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// CreateStock handles POST /stocks/
// Stock rows only come into existence with their product.
func (h *Handlers) CreateStock(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"message": "Create function is not offered in this path."})
}

// UpdateStock handles PUT and PATCH /stocks/:id/
func (h *Handlers) UpdateStock(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.StockInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	stock, err := h.Store.UpdateStock(c.Request.Context(), id, input, c.Request.Method == http.MethodPatch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// DeleteStock handles DELETE /stocks/:id/
// The row belongs to its product, so it is cleared rather than removed.
func (h *Handlers) DeleteStock(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Store.ResetStock(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
