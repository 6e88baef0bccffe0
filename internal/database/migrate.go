package database

import (
	"fmt"
	"strings"
)

// schema uses two placeholders: {{pk}} for the auto-increment primary key
// and {{ts}} for the timestamp column type.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		email VARCHAR(128) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(128) NULL,
		last_name VARCHAR(128) NULL,
		phone VARCHAR(14) NULL,
		address TEXT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id {{pk}},
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(120) NOT NULL,
		created_by BIGINT NULL REFERENCES users(id),
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id {{pk}},
		name VARCHAR(200) NOT NULL UNIQUE,
		price DECIMAL(12,2) NOT NULL,
		image VARCHAR(255) NULL,
		description TEXT NULL,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		created_by BIGINT NULL REFERENCES users(id),
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stocks (
		id {{pk}},
		product_id BIGINT NOT NULL UNIQUE REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		location VARCHAR(100) NULL,
		created_by BIGINT NULL REFERENCES users(id),
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti VARCHAR(64) NOT NULL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		expires_at {{ts}} NOT NULL,
		revoked_at {{ts}} NOT NULL
	)`,
}

// Migrate creates any missing tables. It is idempotent.
func (db *DB) Migrate() error {
	pk, ts := "BIGINT AUTO_INCREMENT PRIMARY KEY", "DATETIME(6)"
	if db.Dialect == SQLite {
		pk, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	}
	r := strings.NewReplacer("{{pk}}", pk, "{{ts}}", ts)

	for i, stmt := range schema {
		if _, err := db.Exec(r.Replace(stmt)); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
