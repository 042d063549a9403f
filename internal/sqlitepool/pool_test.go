package sqlitepool_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tigertix/tigertix/internal/sqlitepool"
)

func TestOpen_AppliesPragmasAndSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "db.sqlite")

	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
		Path:   path,
		Schema: `CREATE TABLE IF NOT EXISTS things (id INTEGER PRIMARY KEY, v TEXT NOT NULL);`,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	conn, err := pool.Take(ctx)
	require.NoError(t, err)
	defer pool.Put(conn)

	var journalMode string
	err = sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			journalMode = stmt.ColumnText(0)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "wal", journalMode)

	err = sqlitex.Execute(conn, "INSERT INTO things (v) VALUES (?)", &sqlitex.ExecOptions{
		Args: []any{"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), conn.LastInsertRowID())
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlitepool.Open(context.Background(), sqlitepool.Config{})
	assert.Error(t, err)
}
