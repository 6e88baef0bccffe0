package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

const stockView = `
	SELECT s.id, s.quantity, s.location, s.product_id, p.name,
		s.created_by, s.created_at, s.updated_at
	FROM stocks s
	JOIN products p ON p.id = s.product_id`

func scanStock(row interface{ Scan(...any) error }) (*models.Stock, error) {
	var st models.Stock
	err := row.Scan(
		&st.ID, &st.Quantity, &st.Location, &st.ProductID, &st.ProductName,
		&st.CreatedBy, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) getStock(ctx context.Context, q queryer, id int64) (*models.Stock, error) {
	st, err := scanStock(q.QueryRowContext(ctx, stockView+" WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Stock not found")
	}
	return st, err
}

func (s *Store) GetStock(ctx context.Context, id int64) (*models.Stock, error) {
	return s.getStock(ctx, s.db, id)
}

// GetStockByProduct returns the stock row paired with a product.
func (s *Store) GetStockByProduct(ctx context.Context, productID int64) (*models.Stock, error) {
	st, err := scanStock(s.db.QueryRowContext(ctx, stockView+" WHERE s.product_id = ?", productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Stock not found")
	}
	return st, err
}

func (s *Store) ListStocks(ctx context.Context) ([]*models.Stock, error) {
	rows, err := s.db.QueryContext(ctx, stockView+" ORDER BY s.id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := []*models.Stock{}
	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, st)
	}
	return stocks, rows.Err()
}

// lockStock loads a stock row for update and reports NotFound when absent.
func (s *Store) lockStock(ctx context.Context, tx *sql.Tx, id int64) (*models.Stock, error) {
	var locked int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM stocks WHERE id = ?"+s.forUpdate(), id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Stock not found")
	}
	if err != nil {
		return nil, err
	}
	return s.getStock(ctx, tx, id)
}

// UpdateStock changes quantity and location. The product a stock row
// belongs to is fixed at creation and cannot be re-pointed.
func (s *Store) UpdateStock(ctx context.Context, id int64, in models.StockInput, partial bool) (*models.Stock, error) {
	var st *models.Stock
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := s.lockStock(ctx, tx, id)
		if err != nil {
			return err
		}

		fields := map[string]string{}
		if in.Product != nil && *in.Product != current.ProductID {
			fields["product_id"] = "The product of a stock record cannot be changed."
		}
		if !partial && in.Quantity == nil {
			fields["quantity"] = "This field is required."
		}
		if in.Quantity != nil && *in.Quantity < 0 {
			fields["quantity"] = "Ensure this value is greater than or equal to 0."
		}
		if len(fields) > 0 {
			return apperr.Validation("Invalid stock data.", fields)
		}

		if in.Quantity != nil {
			current.Quantity = *in.Quantity
		}
		if in.Location != nil {
			current.Location = emptyToNil(in.Location)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE stocks SET quantity = ?, location = ?, updated_at = ? WHERE id = ?",
			current.Quantity, current.Location, time.Now().UTC(), id,
		)
		if err != nil {
			return err
		}

		st, err = s.getStock(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ResetStock clears a stock row back to its initial state. The row itself
// lives as long as its product does.
func (s *Store) ResetStock(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.lockStock(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE stocks SET quantity = 0, location = NULL, updated_at = ? WHERE id = ?",
			time.Now().UTC(), id,
		)
		return err
	})
}
