package actionlog

import (
	"time"

	"github.com/google/uuid"
)

// Entry is an append-only event record for a device. Payload is the raw
// JSON of the originating message, kept opaque for later inspection.
type Entry struct {
	ID        uuid.UUID
	DeviceID  uuid.UUID
	Action    string
	Payload   []byte
	CreatedAt time.Time
}
