package session

import (
	"context"
	"errors"
	"time"

	"github.com/notfawkes/FitMeat/internal/basket"
)

// Snapshot is the persisted form of one session's basket. It exists so a
// basket can be restored after a server restart; the live basket remains the
// source of truth while the session is active.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	Items     []basket.LineItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SnapshotStore defines the interface for basket snapshot persistence.
// Consumers define this interface, not the MongoDB implementation.
type SnapshotStore interface {
	Get(ctx context.Context, sessionID string) (*Snapshot, error)
	Upsert(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrSnapshotNotFound = errors.New("basket snapshot not found")
