package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound       = errors.New("device not found")
	ErrDeviceNotProvisioned = errors.New("device is not provisioned")

	ErrCheckoutNotFound     = errors.New("checkout not found")
	ErrCheckoutItemReturned = errors.New("checkout item already returned")
	ErrDeviceUnavailable    = errors.New("device is not available for checkout")

	ErrBrokerNotConnected = errors.New("broker session is not connected")
	ErrCommandNotSent     = errors.New("command was not delivered to the broker")

	ErrInvalidInput = errors.New("invalid input data")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
