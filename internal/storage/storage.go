// Package storage persists encoded coordinator snapshots.
package storage

import (
	"context"
	"mpc-coordinator/internal/config"

	"github.com/pkg/errors"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Backend saves and loads opaque snapshot bytes.
type Backend interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Close() error
}

// Open builds the backend selected by cfg. It returns nil when snapshots are
// disabled.
func Open(cfg *config.Config) (Backend, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendNone, "":
		return nil, nil
	case config.BackendFile:
		return NewFileStore(cfg.Snapshot.Path), nil
	case config.BackendPostgres, config.BackendSQLite:
		db, err := InitDB(cfg.Snapshot.Backend, cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewDBStore(db, cfg.Snapshot.Retain), nil
	}
	return nil, errors.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
}
