package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/database"
	"github.com/storefront/catalog-api/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, address,
	is_active, is_staff, is_superuser, created_at, updated_at`

var errEmailTaken = apperr.Field("email", "user with this email already exists.")

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts u and sets its ID and timestamps. The email must not
// already be registered.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", u.Email).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return errEmailTaken
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO users
			(email, password_hash, first_name, last_name, phone, address,
			is_active, is_staff, is_superuser, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Address,
			u.IsActive, u.IsStaff, u.IsSuperuser, now, now,
		)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return errEmailTaken
			}
			return err
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		u.ID = id
		u.CreatedAt = now
		u.UpdatedAt = now
		return nil
	})
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	return u, err
}

// UpdateProfile writes the non-nil profile fields and returns the fresh row.
func (s *Store) UpdateProfile(ctx context.Context, id int64, in models.ProfileUpdate) (*models.User, error) {
	var u *models.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		u, err = scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?"+s.forUpdate(), id))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return err
		}

		if in.FirstName != nil {
			u.FirstName = in.FirstName
		}
		if in.LastName != nil {
			u.LastName = in.LastName
		}
		if in.Phone != nil {
			u.Phone = in.Phone
		}
		if in.Address != nil {
			u.Address = in.Address
		}
		u.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET first_name = ?, last_name = ?, phone = ?, address = ?, updated_at = ?
			WHERE id = ?`,
			u.FirstName, u.LastName, u.Phone, u.Address, u.UpdatedAt, u.ID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		hash, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
