package device

import (
	"time"

	"github.com/google/uuid"
)

// Device represents a managed tablet in the domain
type Device struct {
	ID                uuid.UUID
	DeviceCode        string
	Name              *string
	Model             *string
	ConnectionStatus  ConnectionStatus
	MaintenanceStatus MaintenanceStatus

	// Live telemetry snapshot, overwritten on every status message.
	BatteryLevel       *int
	BatteryHealth      *string
	ChargingMethod     *string
	IsCharging         bool
	IsWifiOn           bool
	IsBluetoothOn      bool
	IsMobileDataOn     bool
	IsNetworkAvailable bool
	IsScreenOn         bool
	VolumeLevel        *int
	InstalledAppCount  *int
	BootedAt           *time.Time

	// Current position, updated on every location message regardless of
	// whether a history sample is persisted.
	Latitude  *float64
	Longitude *float64

	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ConnectionStatus represents broker-level liveness of a device
type ConnectionStatus string

const (
	ConnectionOnline  ConnectionStatus = "ONLINE"
	ConnectionOffline ConnectionStatus = "OFFLINE"
)

// MaintenanceStatus represents the maintenance flag set by operators
type MaintenanceStatus string

const (
	MaintenanceNone          MaintenanceStatus = "NONE"
	MaintenanceHasProblem    MaintenanceStatus = "HAS_PROBLEM"
	MaintenanceNeedsRepair   MaintenanceStatus = "NEEDS_REPAIR"
	MaintenanceInMaintenance MaintenanceStatus = "IN_MAINTENANCE"
	MaintenanceDamaged       MaintenanceStatus = "DAMAGED"
)

// FleetStatus is the derived availability of a device. It is never stored;
// it is computed from the maintenance flag and checkout activity.
type FleetStatus string

const (
	FleetAvailable     FleetStatus = "AVAILABLE"
	FleetInUse         FleetStatus = "IN_USE"
	FleetInMaintenance FleetStatus = "IN_MAINTENANCE"
)

// TelemetrySnapshot carries the fields of a status message that overwrite
// the device's live snapshot.
type TelemetrySnapshot struct {
	BatteryLevel       *int
	BatteryHealth      *string
	ChargingMethod     *string
	IsCharging         bool
	IsWifiOn           bool
	IsBluetoothOn      bool
	IsMobileDataOn     bool
	IsNetworkAvailable bool
	IsScreenOn         bool
	VolumeLevel        *int
	InstalledAppCount  *int
	BootedAt           *time.Time
	SeenAt             time.Time
}

// HasPosition reports whether the device has a previously recorded position.
func (d *Device) HasPosition() bool {
	return d.Latitude != nil && d.Longitude != nil
}
