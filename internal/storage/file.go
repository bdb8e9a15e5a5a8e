package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore keeps the latest snapshot in a single file, replaced atomically.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes data to a temporary file next to the target and renames it into
// place, so a crash never leaves a torn snapshot behind.
func (f *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temporary snapshot")
	}
	// No-op once the rename succeeded
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing snapshot")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing snapshot")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), f.path), "replacing %s", f.path)
}

// Load reads the snapshot file. A missing file yields ErrNoSnapshot.
func (f *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.path)
	}
	return data, nil
}

// Close is a no-op.
func (f *FileStore) Close() error { return nil }
