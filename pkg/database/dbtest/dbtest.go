// Package dbtest opens throwaway SQLite databases for repository and use case tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// New returns a migrated database living in t.TempDir. It is closed when the
// test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	h := database.NewHandle(database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "stockroom.db"),
	})
	t.Cleanup(func() { _ = h.Close() })

	db, err := h.DB(context.Background())
	require.NoError(t, err)
	return db
}
