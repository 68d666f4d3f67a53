package models

import (
	"time"

	"github.com/google/uuid"
)

type DeviceModel struct {
	ID                uuid.UUID `gorm:"column:id;primaryKey"`
	DeviceCode        string    `gorm:"column:device_code;uniqueIndex;not null"`
	Name              *string   `gorm:"column:name"`
	Model             *string   `gorm:"column:model"`
	ConnectionStatus  string    `gorm:"column:connection_status;not null"`
	MaintenanceStatus string    `gorm:"column:maintenance_status;not null"`

	BatteryLevel       *int       `gorm:"column:battery_level"`
	BatteryHealth      *string    `gorm:"column:battery_health"`
	ChargingMethod     *string    `gorm:"column:charging_method"`
	IsCharging         bool       `gorm:"column:is_charging"`
	IsWifiOn           bool       `gorm:"column:is_wifi_on"`
	IsBluetoothOn      bool       `gorm:"column:is_bluetooth_on"`
	IsMobileDataOn     bool       `gorm:"column:is_mobile_data_on"`
	IsNetworkAvailable bool       `gorm:"column:is_network_available"`
	IsScreenOn         bool       `gorm:"column:is_screen_on"`
	VolumeLevel        *int       `gorm:"column:volume_level"`
	InstalledAppCount  *int       `gorm:"column:installed_app_count"`
	BootedAt           *time.Time `gorm:"column:booted_at"`

	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`

	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
