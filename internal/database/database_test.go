package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := OpenDB("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, SQLite, db.Dialect)
	require.NoError(t, db.Migrate())
	// Running twice must be harmless.
	require.NoError(t, db.Migrate())

	for _, table := range []string{"users", "categories", "products", "stocks", "revoked_tokens"} {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
		require.NoError(t, err, table)
		assert.Zero(t, n, table)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDB("postgres", "whatever")
	assert.Error(t, err)
}

func TestForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", MySQL.ForUpdate())
	assert.Equal(t, "", SQLite.ForUpdate())
}

func TestIsDeadlock(t *testing.T) {
	assert.False(t, IsDeadlock(nil))
	assert.True(t, IsDeadlock(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsDeadlock(fmt.Errorf("update product: %w", &mysql.MySQLError{Number: 1213})))
	assert.False(t, IsDeadlock(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDeadlock(errors.New("database is locked")))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsDuplicateKey(errors.New("constraint failed: UNIQUE constraint failed: products.name (2067)")))
	assert.False(t, IsDuplicateKey(errors.New("no such table")))
}

func TestSQLiteUniqueViolationIsDuplicate(t *testing.T) {
	db, err := OpenDB("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	insert := `INSERT INTO users (email, password_hash, created_at, updated_at) VALUES (?, 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	_, err = db.Exec(insert, "a@example.com")
	require.NoError(t, err)
	_, err = db.Exec(insert, "a@example.com")
	assert.True(t, IsDuplicateKey(err))
}
