package models

import (
	"time"

	"github.com/google/uuid"
)

type LocationSampleModel struct {
	ID         uuid.UUID `gorm:"column:id;primaryKey"`
	DeviceID   uuid.UUID `gorm:"column:device_id;index:idx_sample_device_time,priority:1;not null"`
	Latitude   float64   `gorm:"column:latitude;not null"`
	Longitude  float64   `gorm:"column:longitude;not null"`
	Accuracy   *float64  `gorm:"column:accuracy"`
	Speed      *float64  `gorm:"column:speed"`
	Heading    *float64  `gorm:"column:heading"`
	RecordedAt time.Time `gorm:"column:recorded_at;index:idx_sample_device_time,priority:2;not null"`
}

func (LocationSampleModel) TableName() string {
	return "location_samples"
}

type DeviceMetricModel struct {
	ID               uuid.UUID `gorm:"column:id;primaryKey"`
	DeviceID         uuid.UUID `gorm:"column:device_id;index:idx_metric_device_time,priority:1;not null"`
	CPULoad          float64   `gorm:"column:cpu_load"`
	MemoryTotal      int64     `gorm:"column:memory_total"`
	MemoryUsed       int64     `gorm:"column:memory_used"`
	MemoryAvailable  int64     `gorm:"column:memory_available"`
	StorageTotal     int64     `gorm:"column:storage_total"`
	StorageUsed      int64     `gorm:"column:storage_used"`
	StorageAvailable int64     `gorm:"column:storage_available"`
	NetworkType      *string   `gorm:"column:network_type"`
	ForegroundApp    *string   `gorm:"column:foreground_app"`
	RecordedAt       time.Time `gorm:"column:recorded_at;index:idx_metric_device_time,priority:2;not null"`
}

func (DeviceMetricModel) TableName() string {
	return "device_metrics"
}
