package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMetadataDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO metadata(key, value) VALUES ('token', 'OLD')`)
	require.NoError(t, err)
	return db
}

func storedToken(t *testing.T, db *sql.DB) string {
	t.Helper()
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = 'token'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return ""
	}
	require.NoError(t, err)
	return v
}

func writeSession(ctx context.Context, tx DBTX, token string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE metadata SET value = ? WHERE key = 'token'`, token); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('auth_user_cache', '{"id":"1"}')`)
	return err
}

func TestWithTx_CommitsTokenAndCache(t *testing.T) {
	db := openMetadataDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return writeSession(ctx, tx, "NEW")
	})
	require.NoError(t, err)

	assert.Equal(t, "NEW", storedToken(t, db))
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestWithTx_ErrorRestoresToken(t *testing.T) {
	db := openMetadataDB(t)
	errCache := errors.New("cache write failed")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, writeSession(ctx, tx, "NEW"))
		return errCache
	})
	require.ErrorIs(t, err, errCache)
	assert.Equal(t, "OLD", storedToken(t, db))
}

func TestWithTx_FailedStatementRollsBackEarlierOnes(t *testing.T) {
	db := openMetadataDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE key = 'token'`); err != nil {
			return err
		}
		// NOT NULL violation
		_, err := tx.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('auth_user_cache', NULL)`)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, "OLD", storedToken(t, db))
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openMetadataDB(t)

	assert.PanicsWithValue(t, "encode user", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, writeSession(ctx, tx, "NEW"))
			panic("encode user")
		})
	})
	assert.Equal(t, "OLD", storedToken(t, db))
}

func TestWithTx_BeginErrorOnClosedDB(t *testing.T) {
	db := openMetadataDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.False(t, called)
}
