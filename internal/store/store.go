// Package store holds the SQL-backed user, catalog, stock and revocation
// stores. Composite catalog operations run inside a single transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/database"
)

var errConcurrentUpdate = apperr.Conflict("The record was changed by another request, please retry.")

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// forUpdate is the row-lock suffix for the current dialect.
func (s *Store) forUpdate() string {
	return s.db.Dialect.ForUpdate()
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on any error. A MySQL deadlock victim surfaces as a conflict.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if database.IsDeadlock(err) {
			return errConcurrentUpdate
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if database.IsDeadlock(err) {
			return errConcurrentUpdate
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
