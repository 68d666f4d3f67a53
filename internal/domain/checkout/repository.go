package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for checkout repository operations
type Repository interface {
	Create(ctx context.Context, checkout *Checkout) error
	GetByID(ctx context.Context, checkoutID uuid.UUID) (*Checkout, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*Item, error)
	ReturnItem(ctx context.Context, itemID uuid.UUID, returnedAt time.Time) error
	// FindActiveItemsByDeviceIDs returns unreturned items whose parent
	// checkout is not soft-deleted, in a single query.
	FindActiveItemsByDeviceIDs(ctx context.Context, deviceIDs []uuid.UUID) ([]*Item, error)
}
