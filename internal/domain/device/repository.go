package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device repository operations.
// UpdateTelemetry and UpdateLocation mark the device ONLINE and refresh
// its last-seen timestamp as part of the write.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetByCode(ctx context.Context, deviceCode string) (*Device, error)
	GetByIDs(ctx context.Context, deviceIDs []uuid.UUID) ([]*Device, error)
	UpdateTelemetry(ctx context.Context, deviceID uuid.UUID, snapshot *TelemetrySnapshot) error
	UpdateLocation(ctx context.Context, deviceID uuid.UUID, latitude, longitude float64, seenAt time.Time) error
	UpdateMaintenanceStatus(ctx context.Context, deviceID uuid.UUID, status MaintenanceStatus) error
	List(ctx context.Context, filter *Filter) ([]*Device, int64, error)
}

// Filter represents filtering options for listing devices
type Filter struct {
	ConnectionStatus  *ConnectionStatus
	MaintenanceStatus *MaintenanceStatus
	MinBattery        *int
	MaxBattery        *int
	Search            string
	Page              int
	PageSize          int
	SortBy            string
	SortOrder         string
}
