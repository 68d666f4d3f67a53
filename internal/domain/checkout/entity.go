package checkout

import (
	"time"

	"github.com/google/uuid"
)

// Checkout represents a borrow transaction covering one or more devices
type Checkout struct {
	ID           uuid.UUID
	BorrowerName string
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
	Items        []*Item
}

// Item is a single borrowed device within a checkout. An item is active
// while ReturnedAt is nil and the parent checkout is not soft-deleted.
type Item struct {
	ID           uuid.UUID
	CheckoutID   uuid.UUID
	DeviceID     uuid.UUID
	CheckedOutAt time.Time
	ReturnedAt   *time.Time
}

// IsReturned reports whether the item has been handed back.
func (i *Item) IsReturned() bool {
	return i.ReturnedAt != nil
}
