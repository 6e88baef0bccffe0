package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

const categoryColumns = "id, name, slug, created_by, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func validCategoryName(name *string) (string, error) {
	if name == nil {
		return "", apperr.Field("name", "This field is required.")
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		return "", apperr.Field("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(n) > 100 {
		return "", apperr.Field("name", "Ensure this field has no more than 100 characters.")
	}
	return n, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Category not found")
	}
	return c, err
}

func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput, actorID int64) (*models.Category, error) {
	name, err := validCategoryName(in.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &models.Category{
		Name:      name,
		Slug:      slug.Make(name),
		CreatedBy: &actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, slug, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		c.Name, c.Slug, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory renames a category. A nil name on a partial update is a
// no-op apart from the timestamp.
func (s *Store) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput, partial bool) (*models.Category, error) {
	var c *models.Category
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		c, err = scanCategory(tx.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?"+s.forUpdate(), id))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Category not found")
		}
		if err != nil {
			return err
		}

		if in.Name != nil || !partial {
			name, err := validCategoryName(in.Name)
			if err != nil {
				return err
			}
			c.Name = name
			c.Slug = slug.Make(name)
		}
		c.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			"UPDATE categories SET name = ?, slug = ?, updated_at = ? WHERE id = ?",
			c.Name, c.Slug, c.UpdatedAt, c.ID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category together with its products and their
// stock rows. Any product in the category that still has stock blocks the
// whole delete.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = ?"+s.forUpdate(), id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Category not found")
		}
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT p.name, s.quantity
			FROM stocks s
			JOIN products p ON p.id = s.product_id
			WHERE p.category_id = ?`+s.forUpdate(), id)
		if err != nil {
			return err
		}
		var blocking []string
		for rows.Next() {
			var name string
			var qty int
			if err := rows.Scan(&name, &qty); err != nil {
				rows.Close()
				return err
			}
			if qty > 0 {
				blocking = append(blocking, name)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if len(blocking) > 0 {
			return apperr.Conflict(fmt.Sprintf("Category has products with stock available: %s", strings.Join(blocking, ", ")))
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM stocks WHERE product_id IN (SELECT id FROM products WHERE category_id = ?)", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE category_id = ?", id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		return err
	})
}
