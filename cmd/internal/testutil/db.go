// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"newsnotes/cmd/internal/config"
	"newsnotes/cmd/internal/domain/database"
	"newsnotes/cmd/internal/utils/uid"
)

// NewDB creates a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	require.NoError(t, uid.Init(1))

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err, "Failed to create test database")

	// Every pooled connection would get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// NewFileDB opens a SQLite file database in a temporary directory the same
// way the server does, pool settings included.
func NewFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	require.NoError(t, uid.Init(1))

	db, err := database.Init(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "notes.db"),
	})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
