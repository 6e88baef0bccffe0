package store

import (
	"context"
	"time"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/database"
	"github.com/storefront/catalog-api/internal/models"
)

var errAlreadyRevoked = apperr.Token("Token is blacklisted", nil)

// RevokeToken adds a token id to the denylist. Revoking the same id twice
// fails.
func (s *Store) RevokeToken(ctx context.Context, t models.RevokedToken) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at) VALUES (?, ?, ?, ?)",
		t.JTI, t.UserID, t.ExpiresAt.UTC(), t.RevokedAt.UTC(),
	)
	if database.IsDuplicateKey(err) {
		return errAlreadyRevoked
	}
	return err
}

func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?", jti).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeExpiredTokens drops denylist entries for tokens that have expired
// by now; they would be rejected on expiry alone.
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
