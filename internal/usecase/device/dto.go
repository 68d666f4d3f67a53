package device

import (
	"time"

	"github.com/google/uuid"

	domainDevice "tablet-fleet-manager/internal/domain/device"
)

type CreateDeviceRequest struct {
	DeviceCode string  `json:"device_code" validate:"required,min=3,max=64"`
	Name       *string `json:"name" validate:"omitempty,min=2,max=100"`
	Model      *string `json:"model" validate:"omitempty,max=50"`
}

type UpdateMaintenanceRequest struct {
	MaintenanceStatus string `json:"maintenance_status" validate:"required,maintenance_status"`
	Reason            string `json:"reason" validate:"omitempty,max=500"`
}

type SendCommandRequest struct {
	Action string                 `json:"action" validate:"required,min=1,max=64"`
	Params map[string]interface{} `json:"params"`
}

type DeviceFilterRequest struct {
	ConnectionStatus  *string `form:"connection_status" validate:"omitempty,oneof=ONLINE OFFLINE"`
	MaintenanceStatus *string `form:"maintenance_status" validate:"omitempty,maintenance_status"`
	MinBattery        *int    `form:"min_battery" validate:"omitempty,min=0,max=100"`
	MaxBattery        *int    `form:"max_battery" validate:"omitempty,min=0,max=100"`
	Search            string  `form:"search"`
	Page              int     `form:"page" validate:"omitempty,min=1"`
	PageSize          int     `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy            string  `form:"sort_by" validate:"omitempty,oneof=created_at updated_at battery_level last_seen_at device_code"`
	SortOrder         string  `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type DeviceResponse struct {
	ID                uuid.UUID  `json:"id"`
	DeviceCode        string     `json:"device_code"`
	Name              *string    `json:"name"`
	Model             *string    `json:"model"`
	ConnectionStatus  string     `json:"connection_status"`
	MaintenanceStatus string     `json:"maintenance_status"`
	FleetStatus       string     `json:"fleet_status,omitempty"`
	BatteryLevel      *int       `json:"battery_level"`
	IsCharging        bool       `json:"is_charging"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	LastSeenAt        *time.Time `json:"last_seen_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

type DeviceListResponse struct {
	Devices  []*DeviceResponse `json:"devices"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type LocationPoint struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

type MetricReading struct {
	CPULoad          float64   `json:"cpu_load"`
	MemoryTotal      int64     `json:"memory_total"`
	MemoryUsed       int64     `json:"memory_used"`
	MemoryAvailable  int64     `json:"memory_available"`
	StorageTotal     int64     `json:"storage_total"`
	StorageUsed      int64     `json:"storage_used"`
	StorageAvailable int64     `json:"storage_available"`
	NetworkType      *string   `json:"network_type,omitempty"`
	ForegroundApp    *string   `json:"foreground_app,omitempty"`
	RecordedAt       time.Time `json:"recorded_at"`
}

func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:                d.ID,
		DeviceCode:        d.DeviceCode,
		Name:              d.Name,
		Model:             d.Model,
		ConnectionStatus:  string(d.ConnectionStatus),
		MaintenanceStatus: string(d.MaintenanceStatus),
		BatteryLevel:      d.BatteryLevel,
		IsCharging:        d.IsCharging,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		LastSeenAt:        d.LastSeenAt,
		CreatedAt:         d.CreatedAt,
	}
}

func ToDomainFilter(req *DeviceFilterRequest) *domainDevice.Filter {
	filter := &domainDevice.Filter{
		MinBattery: req.MinBattery,
		MaxBattery: req.MaxBattery,
		Search:     req.Search,
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	if req.ConnectionStatus != nil {
		status := domainDevice.ConnectionStatus(*req.ConnectionStatus)
		filter.ConnectionStatus = &status
	}
	if req.MaintenanceStatus != nil {
		status := domainDevice.MaintenanceStatus(*req.MaintenanceStatus)
		filter.MaintenanceStatus = &status
	}
	return filter
}
