package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/database"
	"github.com/storefront/catalog-api/internal/models"
)

const productView = `
	SELECT p.id, p.name, p.price, p.image, p.description, p.category_id,
		c.name, COALESCE(s.quantity, 0), p.created_by, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN stocks s ON s.product_id = p.id`

var errProductNameTaken = apperr.Field("name", "product with this name already exists.")

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.CategoryID,
		&p.CategoryName, &p.Stock, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) getProduct(ctx context.Context, q queryer, id int64) (*models.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, productView+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Product not found")
	}
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.getProduct(ctx, s.db, id)
}

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(productView)

	var args []any
	if filter.CategoryID != nil {
		queryBuilder.WriteString(" WHERE p.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	queryBuilder.WriteString(" ORDER BY p.id ASC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Prices are stored as DECIMAL(12,2).
const priceDecimalPlaces = 2

var maxPrice = decimal.New(1, 10)

// productFields is a validated, fully populated product payload.
type productFields struct {
	name        string
	price       decimal.Decimal
	image       *string
	description *string
	categoryID  int64
}

// mergeProductInput overlays in onto current (nil for creates). Without
// partial, name, price and category are required; omitted optional fields
// keep their current value either way.
func mergeProductInput(current *models.Product, in models.ProductInput, partial bool) (productFields, error) {
	var f productFields
	fields := map[string]string{}

	if current != nil {
		f = productFields{
			name:        current.Name,
			price:       current.Price,
			image:       current.Image,
			description: current.Description,
			categoryID:  current.CategoryID,
		}
	}
	if !partial {
		if in.Name == nil {
			fields["name"] = "This field is required."
		}
		if in.Price == nil {
			fields["price"] = "This field is required."
		}
		if in.Category == nil {
			fields["category"] = "This field is required."
		}
	}

	if in.Name != nil {
		f.name = strings.TrimSpace(*in.Name)
		switch {
		case f.name == "":
			fields["name"] = "This field may not be blank."
		case utf8.RuneCountInString(f.name) > 200:
			fields["name"] = "Ensure this field has no more than 200 characters."
		}
	}
	if in.Price != nil {
		f.price = *in.Price
		switch {
		case f.price.IsNegative():
			fields["price"] = "Ensure this value is greater than or equal to 0."
		case !f.price.Equal(f.price.Round(priceDecimalPlaces)):
			fields["price"] = "Ensure that there are no more than 2 decimal places."
		case f.price.GreaterThanOrEqual(maxPrice):
			fields["price"] = "Ensure that there are no more than 10 digits before the decimal point."
		}
	}
	if in.Category != nil {
		f.categoryID = *in.Category
	}
	if in.Image != nil {
		f.image = emptyToNil(in.Image)
	}
	if in.Description != nil {
		f.description = emptyToNil(in.Description)
	}

	if len(fields) > 0 {
		return f, apperr.Validation("Invalid product data.", fields)
	}
	return f, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// checkProductRefs verifies the category exists and no other product owns
// the name. The category row is locked so it cannot vanish under us.
func (s *Store) checkProductRefs(ctx context.Context, tx *sql.Tx, f productFields, selfID int64) error {
	var catID int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = ?"+s.forUpdate(), f.categoryID).Scan(&catID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Field("category", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", f.categoryID))
	}
	if err != nil {
		return err
	}

	var taken int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE name = ? AND id <> ?", f.name, selfID).Scan(&taken)
	if err != nil {
		return err
	}
	if taken > 0 {
		return errProductNameTaken
	}
	return nil
}

// CreateProduct inserts a product and its empty stock row in one
// transaction, so a product never exists without stock.
func (s *Store) CreateProduct(ctx context.Context, in models.ProductInput, actorID int64) (*models.Product, error) {
	f, err := mergeProductInput(nil, in, false)
	if err != nil {
		return nil, err
	}

	var p *models.Product
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkProductRefs(ctx, tx, f, 0); err != nil {
			return err
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO products
			(name, price, image, description, category_id, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.name, f.price, f.image, f.description, f.categoryID, actorID, now, now,
		)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return errProductNameTaken
			}
			return err
		}
		productID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO stocks (product_id, quantity, location, created_by, created_at, updated_at)
			VALUES (?, 0, NULL, ?, ?, ?)`,
			productID, actorID, now, now,
		)
		if err != nil {
			return err
		}

		p, err = s.getProduct(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// lockCategories locks the given category rows in ascending id order.
// Missing categories are skipped; checkProductRefs reports them.
func (s *Store) lockCategories(ctx context.Context, tx *sql.Tx, current int64, target *int64) error {
	ids := []int64{current}
	if target != nil && *target != current {
		ids = append(ids, *target)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	for _, catID := range ids {
		var found int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = ?"+s.forUpdate(), catID).Scan(&found)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, in models.ProductInput, partial bool) (*models.Product, error) {
	var p *models.Product
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// Categories are locked before the product, the same order
		// DeleteCategory takes.
		var categoryID int64
		err := tx.QueryRowContext(ctx, "SELECT category_id FROM products WHERE id = ?", id).Scan(&categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return err
		}
		if err := s.lockCategories(ctx, tx, categoryID, in.Category); err != nil {
			return err
		}

		var locked int64
		err = tx.QueryRowContext(ctx, "SELECT id FROM products WHERE id = ?"+s.forUpdate(), id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return err
		}
		current, err := s.getProduct(ctx, tx, id)
		if err != nil {
			return err
		}

		f, err := mergeProductInput(current, in, partial)
		if err != nil {
			return err
		}
		if err := s.checkProductRefs(ctx, tx, f, id); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET name = ?, price = ?, image = ?, description = ?, category_id = ?, updated_at = ?
			WHERE id = ?`,
			f.name, f.price, f.image, f.description, f.categoryID, time.Now().UTC(), id,
		)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return errProductNameTaken
			}
			return err
		}

		p, err = s.getProduct(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetProductImage records the public reference of an uploaded image.
func (s *Store) SetProductImage(ctx context.Context, id int64, ref string) (*models.Product, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET image = ?, updated_at = ? WHERE id = ?",
		ref, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, apperr.NotFound("Product not found")
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product and its stock row, refusing while any
// quantity is left. The stock row stays locked from the check until the
// delete commits, so a concurrent restock cannot slip in between.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var productID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM products WHERE id = ?"+s.forUpdate(), id).Scan(&productID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return err
		}

		var quantity int
		err = tx.QueryRowContext(ctx, "SELECT quantity FROM stocks WHERE product_id = ?"+s.forUpdate(), id).Scan(&quantity)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if quantity > 0 {
			return apperr.Conflict("Product has stock available")
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM stocks WHERE product_id = ?", id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
		return err
	})
}
