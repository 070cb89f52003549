// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"auth-account/internal/database"
	"auth-account/internal/database/sqlite"
	"auth-account/internal/repository"
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewDB returns a migrated in-memory sqlite database closed with the test.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

// NewStore returns a Store over a fresh in-memory database.
func NewStore(t testing.TB) repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}
