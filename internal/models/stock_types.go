package models

import "time"

// Stock is the inventory row paired 1:1 with a product.
type Stock struct {
	ID        int64     `json:"id" db:"id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Location  *string   `json:"location" db:"location"`
	ProductID int64     `json:"product_id" db:"product_id"`
	CreatedBy *int64    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	ProductName string `json:"product" db:"-"`
}

// StockInput is the writable part of a stock row. Product may be echoed
// back by clients but must match the existing product.
type StockInput struct {
	Quantity *int    `json:"quantity" binding:"omitempty,gte=0"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	Product  *int64  `json:"product_id"`
}
