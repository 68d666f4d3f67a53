package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// LocationSample is an append-only point in a device's movement history.
// Consecutive samples for a device are spaced by at least the configured
// minimum distance; only the very first sample is exempt.
type LocationSample struct {
	ID         uuid.UUID
	DeviceID   uuid.UUID
	Latitude   float64
	Longitude  float64
	Accuracy   *float64
	Speed      *float64
	Heading    *float64
	RecordedAt time.Time
}

// DeviceMetric is a point-in-time resource reading. Memory and storage
// values are byte counts.
type DeviceMetric struct {
	ID               uuid.UUID
	DeviceID         uuid.UUID
	CPULoad          float64
	MemoryTotal      int64
	MemoryUsed       int64
	MemoryAvailable  int64
	StorageTotal     int64
	StorageUsed      int64
	StorageAvailable int64
	NetworkType      *string
	ForegroundApp    *string
	RecordedAt       time.Time
}
