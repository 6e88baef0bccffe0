package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is the model for the 'products' table, joined with its category
// name and current stock quantity.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       *string         `json:"image" db:"image"`
	Description *string         `json:"description" db:"description"`
	CategoryID  int64           `json:"category" db:"category_id"`
	CreatedBy   *int64          `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// Joins (Not in DB table, computed at read time)
	CategoryName string `json:"category_name" db:"-"`
	Stock        int    `json:"stock" db:"-"`
}

// ProductInput carries create and update payloads. For create and full
// update every required field must be set; partial updates leave nil
// fields untouched.
type ProductInput struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
	Category    *int64           `json:"category"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *int64
}
