package storage

import (
	"context"
	"fmt"
	"mpc-coordinator/internal/config"
	"mpc-coordinator/internal/logger"
	"mpc-coordinator/internal/storage/models"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the database for the given backend and migrates the snapshot
// schema.
func InitDB(backend string, cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch backend {
	case config.BackendPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
		dialector = postgres.Open(dsn)
	case config.BackendSQLite:
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, errors.Errorf("backend %q is not a database", backend)
	}

	// Route gorm's own logging through logrus
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger.Log, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", backend)
	}
	logger.Log.Infof("Database connection successfully established (%s).", backend)

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.Snapshot{}); err != nil {
		return nil, errors.Wrap(err, "migrating snapshot schema")
	}
	logger.Log.Info("Database schema migrated.")
	return db, nil
}

// DBStore keeps snapshots as rows, retaining the newest few.
type DBStore struct {
	db     *gorm.DB
	retain int
}

// NewDBStore stores snapshots in db. retain <= 0 keeps every row.
func NewDBStore(db *gorm.DB, retain int) *DBStore {
	return &DBStore{db: db, retain: retain}
}

// Save inserts a new snapshot row and prunes rows beyond the retention count.
func (s *DBStore) Save(ctx context.Context, data []byte) error {
	snap := &models.Snapshot{Size: len(data), Payload: data}
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return errors.Wrap(err, "inserting snapshot")
	}
	logger.Log.WithField("snapshotId", snap.SnapshotID).Debug("snapshot row written")
	return s.prune(ctx)
}

func (s *DBStore) prune(ctx context.Context) error {
	if s.retain <= 0 {
		return nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Snapshot{}).Order("id desc").Pluck("id", &ids).Error
	if err != nil {
		return errors.Wrap(err, "listing snapshots")
	}
	if len(ids) <= s.retain {
		return nil
	}
	// ids are newest first; everything past the retention count goes
	stale := ids[s.retain:]
	if err := s.db.WithContext(ctx).Where("id IN ?", stale).Delete(&models.Snapshot{}).Error; err != nil {
		return errors.Wrap(err, "pruning snapshots")
	}
	return nil
}

// Load returns the payload of the newest snapshot row.
func (s *DBStore) Load(ctx context.Context) ([]byte, error) {
	// Newest row wins
	var snap models.Snapshot
	err := s.db.WithContext(ctx).Order("id desc").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading snapshot")
	}
	return snap.Payload, nil
}

// List returns snapshot metadata, newest first, without payloads.
func (s *DBStore) List(ctx context.Context) ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	err := s.db.WithContext(ctx).Select("id", "snapshot_id", "created_at", "size").Order("id desc").Find(&snaps).Error
	return snaps, errors.Wrap(err, "listing snapshots")
}

// Close releases the underlying connection pool.
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
