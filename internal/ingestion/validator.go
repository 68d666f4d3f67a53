package ingestion

import "fmt"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ValidateLocation validates a location message
func ValidateLocation(msg *LocationMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"}
	}

	if msg.Longitude < -180 || msg.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"}
	}

	if msg.Accuracy != nil && *msg.Accuracy < 0 {
		return &ValidationError{Field: "accuracy", Message: "accuracy must be non-negative"}
	}

	if msg.Speed != nil && *msg.Speed < 0 {
		return &ValidationError{Field: "speed", Message: "speed must be non-negative"}
	}

	return nil
}
