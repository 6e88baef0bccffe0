package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

// ListProducts handles GET /products/
// An optional ?category=<id> narrows the list to one category.
func (h *Handlers) ListProducts(c *gin.Context) {
	var filter models.ProductFilter
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperr.Field("category", "Select a valid choice."))
			return
		}
		filter.CategoryID = &id
	}

	products, err := h.Store.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id/
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.Store.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products/
// The product and its empty stock row are created together.
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind JSON ---
	var input models.ProductInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	// 2. --- Create product + stock ---
	product, err := h.Store.CreateProduct(c.Request.Context(), input, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT and PATCH /products/:id/
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input models.ProductInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	partial := c.Request.Method == http.MethodPatch
	product, err := h.Store.UpdateProduct(c.Request.Context(), id, input, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id/
// Products that still hold stock are refused with 409.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Store.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadProductImage handles POST /products/:id/image/
// It saves the file under the media directory and links it to the product.
func (h *Handlers) UploadProductImage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// 1. Make sure the product exists before touching the disk
	if _, err := h.Store.GetProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	// 2. Get the file from the request
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, apperr.Field("image", "No file was submitted."))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		respondError(c, apperr.Field("image", "Upload a valid image."))
		return
	}

	// 3. Create the media directory if it doesn't exist
	dir := filepath.Join(h.MediaDir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		respondError(c, apperr.Internal("failed to create media directory", err))
		return
	}

	// 4. Save under a unique filename (uuid + extension)
	newFilename := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(dir, newFilename)); err != nil {
		respondError(c, apperr.Internal("failed to save upload", err))
		return
	}

	// 5. Record the public URL
	publicURL := fmt.Sprintf("%s/media/products/%s", strings.TrimRight(h.BaseURL, "/"), newFilename)
	product, err := h.Store.SetProductImage(c.Request.Context(), id, publicURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
