package checkout

import "errors"

var (
	ErrCheckoutNotFound    = errors.New("checkout not found")
	ErrItemNotFound        = errors.New("checkout item not found")
	ErrItemAlreadyReturned = errors.New("checkout item already returned")
)
