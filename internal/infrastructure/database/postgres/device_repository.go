package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainDevice "tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/infrastructure/database/postgres/models"
)

// DeviceRepository implements domainDevice.Repository
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	if d.ConnectionStatus == "" {
		d.ConnectionStatus = domainDevice.ConnectionOffline
	}
	if d.MaintenanceStatus == "" {
		d.MaintenanceStatus = domainDevice.MaintenanceNone
	}

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainDevice.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByCode(ctx context.Context, deviceCode string) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("device_code = ?", deviceCode).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByIDs(ctx context.Context, deviceIDs []uuid.UUID) ([]*domainDevice.Device, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	var dbModels []models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id IN ?", deviceIDs).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, nil
}

func (r *DeviceRepository) UpdateTelemetry(ctx context.Context, deviceID uuid.UUID, snapshot *domainDevice.TelemetrySnapshot) error {
	updates := map[string]interface{}{
		"battery_level":        snapshot.BatteryLevel,
		"battery_health":       snapshot.BatteryHealth,
		"charging_method":      snapshot.ChargingMethod,
		"is_charging":          snapshot.IsCharging,
		"is_wifi_on":           snapshot.IsWifiOn,
		"is_bluetooth_on":      snapshot.IsBluetoothOn,
		"is_mobile_data_on":    snapshot.IsMobileDataOn,
		"is_network_available": snapshot.IsNetworkAvailable,
		"is_screen_on":         snapshot.IsScreenOn,
		"volume_level":         snapshot.VolumeLevel,
		"installed_app_count":  snapshot.InstalledAppCount,
		"booted_at":            snapshot.BootedAt,
		"connection_status":    string(domainDevice.ConnectionOnline),
		"last_seen_at":         snapshot.SeenAt,
		"updated_at":           snapshot.SeenAt,
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update telemetry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) UpdateLocation(ctx context.Context, deviceID uuid.UUID, latitude, longitude float64, seenAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"latitude":          latitude,
			"longitude":         longitude,
			"connection_status": string(domainDevice.ConnectionOnline),
			"last_seen_at":      seenAt,
			"updated_at":        seenAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) UpdateMaintenanceStatus(ctx context.Context, deviceID uuid.UUID, status domainDevice.MaintenanceStatus) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"maintenance_status": string(status),
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update maintenance status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) List(ctx context.Context, filter *domainDevice.Filter) ([]*domainDevice.Device, int64, error) {
	var dbModels []models.DeviceModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.DeviceModel{})

	if filter.ConnectionStatus != nil {
		db = db.Where("connection_status = ?", string(*filter.ConnectionStatus))
	}
	if filter.MaintenanceStatus != nil {
		db = db.Where("maintenance_status = ?", string(*filter.MaintenanceStatus))
	}
	if filter.MinBattery != nil {
		db = db.Where("battery_level >= ?", *filter.MinBattery)
	}
	if filter.MaxBattery != nil {
		db = db.Where("battery_level <= ?", *filter.MaxBattery)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		db = db.Where("device_code ILIKE ? OR name ILIKE ?", search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	sortBy := "created_at"
	if filter.SortBy != "" {
		sortBy = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	err := db.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Limit(pageSize).
		Offset(offset).
		Find(&dbModels).Error

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, total, nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:                 d.ID,
		DeviceCode:         d.DeviceCode,
		Name:               d.Name,
		Model:              d.Model,
		ConnectionStatus:   string(d.ConnectionStatus),
		MaintenanceStatus:  string(d.MaintenanceStatus),
		BatteryLevel:       d.BatteryLevel,
		BatteryHealth:      d.BatteryHealth,
		ChargingMethod:     d.ChargingMethod,
		IsCharging:         d.IsCharging,
		IsWifiOn:           d.IsWifiOn,
		IsBluetoothOn:      d.IsBluetoothOn,
		IsMobileDataOn:     d.IsMobileDataOn,
		IsNetworkAvailable: d.IsNetworkAvailable,
		IsScreenOn:         d.IsScreenOn,
		VolumeLevel:        d.VolumeLevel,
		InstalledAppCount:  d.InstalledAppCount,
		BootedAt:           d.BootedAt,
		Latitude:           d.Latitude,
		Longitude:          d.Longitude,
		LastSeenAt:         d.LastSeenAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	return &domainDevice.Device{
		ID:                 m.ID,
		DeviceCode:         m.DeviceCode,
		Name:               m.Name,
		Model:              m.Model,
		ConnectionStatus:   domainDevice.ConnectionStatus(m.ConnectionStatus),
		MaintenanceStatus:  domainDevice.MaintenanceStatus(m.MaintenanceStatus),
		BatteryLevel:       m.BatteryLevel,
		BatteryHealth:      m.BatteryHealth,
		ChargingMethod:     m.ChargingMethod,
		IsCharging:         m.IsCharging,
		IsWifiOn:           m.IsWifiOn,
		IsBluetoothOn:      m.IsBluetoothOn,
		IsMobileDataOn:     m.IsMobileDataOn,
		IsNetworkAvailable: m.IsNetworkAvailable,
		IsScreenOn:         m.IsScreenOn,
		VolumeLevel:        m.VolumeLevel,
		InstalledAppCount:  m.InstalledAppCount,
		BootedAt:           m.BootedAt,
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		LastSeenAt:         m.LastSeenAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
