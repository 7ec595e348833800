package checkpoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "checkpoint.db")
	store, err := OpenSQL(context.Background(), DriverSQLite, dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStore(t)

	ms, err := store.Load(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ms)

	tests := []struct {
		name  string
		save  int64
		after int64
	}{
		{"first insert", 1_000, 1_000},
		{"moves forward", 2_000, 2_000},
		{"ignores older value", 1_500, 2_000},
		{"ignores equal value", 2_000, 2_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, "orders", tt.save))
			got, err := store.Load(ctx, "orders")
			require.NoError(t, err)
			assert.Equal(t, tt.after, got)
		})
	}

	var count int64
	require.NoError(t, store.db.Model(&record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: DriverNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, store)

	_, err = Open(ctx, Config{Driver: "etcd"}, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, Config{Driver: DriverSQLite}, nil)
	assert.Error(t, err)

	store, err = Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "cp.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, store)
	assert.NoError(t, store.Close())
}
