package storage

import (
	"context"
	"fmt"
	"mpc-coordinator/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	db, err := InitDB(config.BackendSQLite, config.DBConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.snap"))

	_, err := fs.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoSnapshot))

	require.NoError(t, fs.Save(ctx, []byte("first")))
	require.NoError(t, fs.Save(ctx, []byte("second")))

	data, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
	assert.NoError(t, fs.Close())
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "state.snap"))
	require.NoError(t, fs.Save(context.Background(), []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.snap", entries[0].Name())
}

func TestFileStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := NewFileStore(filepath.Join(t.TempDir(), "state.snap"))
	assert.ErrorIs(t, fs.Save(ctx, []byte("x")), context.Canceled)
}

func TestDBStoreLoadsNewest(t *testing.T) {
	ctx := context.Background()
	store := NewDBStore(setupTestDB(t), 0)

	_, err := store.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoSnapshot))

	require.NoError(t, store.Save(ctx, []byte("one")))
	require.NoError(t, store.Save(ctx, []byte("two")))

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestDBStoreRetention(t *testing.T) {
	ctx := context.Background()
	store := NewDBStore(setupTestDB(t), 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, []byte(fmt.Sprintf("snap-%d", i))))
	}

	snaps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, len("snap-4"), snaps[0].Size)
	assert.NotEqual(t, snaps[0].SnapshotID, snaps[1].SnapshotID)
	assert.Nil(t, snaps[0].Payload)

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("snap-4"), data)
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Snapshot.Backend = config.BackendNone
	b, err := Open(cfg)
	require.NoError(t, err)
	assert.Nil(t, b)

	cfg.Snapshot.Backend = config.BackendFile
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "s.snap")
	b, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, b)

	cfg.Snapshot.Backend = config.BackendSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "s.db")
	b, err = Open(cfg)
	require.NoError(t, err)
	require.IsType(t, &DBStore{}, b)
	assert.NoError(t, b.Close())

	cfg.Snapshot.Backend = "tape"
	_, err = Open(cfg)
	assert.Error(t, err)
}
