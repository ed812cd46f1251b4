package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/iamcore/internal/db/bunx"
)

// setupTestDB opens a self-contained in-memory SQLite database and creates
// the full schema, so repository tests never require a reachable Postgres.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := bunx.NewDB(":memory:", bunx.PoolConfig{MinConns: 1, MaxConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, bunx.CreateSchema(context.Background(), db))
	return db
}
