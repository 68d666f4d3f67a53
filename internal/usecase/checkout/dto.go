package checkout

import (
	"time"

	"github.com/google/uuid"

	domainCheckout "tablet-fleet-manager/internal/domain/checkout"
)

// CreateCheckoutRequest represents the payload for borrowing devices
type CreateCheckoutRequest struct {
	BorrowerName string      `json:"borrower_name" validate:"required,min=2,max=128"`
	Note         *string     `json:"note" validate:"omitempty,max=512"`
	DeviceIDs    []uuid.UUID `json:"device_ids" validate:"required,min=1,max=50,unique"`
}

// CheckoutItemResponse represents a borrowed device within a checkout
type CheckoutItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	DeviceID     uuid.UUID  `json:"device_id"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}

// CheckoutResponse represents checkout data in API responses
type CheckoutResponse struct {
	ID           uuid.UUID               `json:"id"`
	BorrowerName string                  `json:"borrower_name"`
	Note         *string                 `json:"note,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	Items        []*CheckoutItemResponse `json:"items"`
}

// ToCheckoutResponse converts a domain checkout to a response DTO
func ToCheckoutResponse(c *domainCheckout.Checkout) *CheckoutResponse {
	items := make([]*CheckoutItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = &CheckoutItemResponse{
			ID:           item.ID,
			DeviceID:     item.DeviceID,
			CheckedOutAt: item.CheckedOutAt,
			ReturnedAt:   item.ReturnedAt,
		}
	}

	return &CheckoutResponse{
		ID:           c.ID,
		BorrowerName: c.BorrowerName,
		Note:         c.Note,
		CreatedAt:    c.CreatedAt,
		Items:        items,
	}
}
