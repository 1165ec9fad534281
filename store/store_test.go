package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tlsunbound/authgate/store"
)

func testDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "test.db")
}

func TestOpenSeedsConnectivityRow(t *testing.T) {
	ctx := context.Background()

	st, err := store.Open(ctx, testDSN(t))
	require.NoError(t, err)
	defer st.Close()

	row, err := st.Checks().Seeded(ctx)
	require.NoError(t, err)
	require.Equal(t, store.SeededCheckID(), row.ID)
	require.Equal(t, "Connection Test!", row.Title)
	require.NotEmpty(t, row.Description)
}

func TestSeededCheckIDIsDeterministic(t *testing.T) {
	require.Equal(t, store.SeededCheckID(), store.SeededCheckID())
	require.NotEqual(t, uuid.Nil, store.SeededCheckID())
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := testDSN(t)

	st, err := store.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = store.Open(ctx, dsn)
	require.NoError(t, err)
	defer st.Close()

	count, err := st.DB().NewSelect().
		Model((*store.ConnectionCheck)(nil)).
		Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGetByIDMissingRowIsNotFound(t *testing.T) {
	ctx := context.Background()

	st, err := store.Open(ctx, testDSN(t))
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Checks().GetByID(ctx, uuid.NewString())
	require.Error(t, err)
	require.True(t, store.IsNotFound(err))
}

func TestIsNotFound(t *testing.T) {
	require.True(t, store.IsNotFound(sql.ErrNoRows))
	require.False(t, store.IsNotFound(nil))
	require.False(t, store.IsNotFound(context.Canceled))
}
