package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Snapshot is one whole-store dump. Rows are only ever inserted and pruned;
// the newest row (highest ID) is the one restored.
type Snapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SnapshotID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"snapshotId"`
	CreatedAt  time.Time `json:"createdAt"`
	Size       int       `json:"size"`
	Payload    []byte    `json:"-"` // msgpack-encoded store state
}

// BeforeCreate assigns the public snapshot id.
func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	if s.SnapshotID == uuid.Nil {
		s.SnapshotID = uuid.New()
	}
	return nil
}
