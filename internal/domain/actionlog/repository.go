package actionlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("action log entry not found")

// Repository defines the interface for action log operations
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// FindMostRecent returns the newest entry for the device and action
	// inside [from, to). Implementations must resolve this as an indexed
	// point lookup, not a scan.
	FindMostRecent(ctx context.Context, deviceID uuid.UUID, action string, from, to time.Time) (*Entry, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*Entry, error)
}
