package device

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/domain/telemetry"
	"tablet-fleet-manager/internal/fleet"
	"tablet-fleet-manager/internal/geo"
	"tablet-fleet-manager/internal/ingestion"
	"tablet-fleet-manager/internal/logger"
	appErrors "tablet-fleet-manager/pkg/errors"
	"tablet-fleet-manager/pkg/utils"
)

// Publisher is the egress surface of the connection manager.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) bool
}

// Service implements device use cases
type Service struct {
	deviceRepo domainDevice.Repository
	history    telemetry.Repository
	aggregator *fleet.Aggregator
	broker     Publisher

	simplifyMinDistanceM float64
	simplifyMaxPoints    int
}

// NewService creates a new device service
func NewService(
	deviceRepo domainDevice.Repository,
	history telemetry.Repository,
	aggregator *fleet.Aggregator,
	broker Publisher,
	simplifyMinDistanceM float64,
	simplifyMaxPoints int,
) *Service {
	return &Service{
		deviceRepo:           deviceRepo,
		history:              history,
		aggregator:           aggregator,
		broker:               broker,
		simplifyMinDistanceM: simplifyMinDistanceM,
		simplifyMaxPoints:    simplifyMaxPoints,
	}
}

func (s *Service) CreateDevice(ctx context.Context, req *CreateDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	existing, _ := s.deviceRepo.GetByCode(ctx, req.DeviceCode)
	if existing != nil {
		return nil, appErrors.NewAppError("DEVICE_EXISTS", "Device with this code already exists", nil)
	}

	device := &domainDevice.Device{
		DeviceCode:        req.DeviceCode,
		Name:              req.Name,
		Model:             req.Model,
		ConnectionStatus:  domainDevice.ConnectionOffline,
		MaintenanceStatus: domainDevice.MaintenanceNone,
	}

	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	logger.Info("Device provisioned",
		zap.String("device_id", device.ID.String()),
		zap.String("device_code", device.DeviceCode),
	)

	return ToDeviceResponse(device), nil
}

func (s *Service) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	resp := ToDeviceResponse(device)
	if status, err := s.aggregator.ComputeStatus(ctx, device.ID); err == nil {
		resp.FleetStatus = string(status)
	}

	return resp, nil
}

func (s *Service) ListDevices(ctx context.Context, req *DeviceFilterRequest) (*DeviceListResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	devices, total, err := s.deviceRepo.List(ctx, ToDomainFilter(req))
	if err != nil {
		return nil, err
	}

	deviceIDs := make([]uuid.UUID, len(devices))
	for i, d := range devices {
		deviceIDs[i] = d.ID
	}
	statuses, err := s.aggregator.ComputeStatuses(ctx, deviceIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*DeviceResponse, len(devices))
	for i, d := range devices {
		responses[i] = ToDeviceResponse(d)
		responses[i].FleetStatus = string(statuses[d.ID])
	}

	return &DeviceListResponse{
		Devices:  responses,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// GetFleetStatuses returns the derived status for each requested device.
func (s *Service) GetFleetStatuses(ctx context.Context, deviceIDs []uuid.UUID) (map[uuid.UUID]domainDevice.FleetStatus, error) {
	return s.aggregator.ComputeStatuses(ctx, deviceIDs)
}

// UpdateMaintenanceStatus sets the maintenance flag and pushes the
// recomputed fleet status to observers.
func (s *Service) UpdateMaintenanceStatus(ctx context.Context, deviceID uuid.UUID, req *UpdateMaintenanceRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	status := domainDevice.MaintenanceStatus(req.MaintenanceStatus)
	if err := s.deviceRepo.UpdateMaintenanceStatus(ctx, deviceID, status); err != nil {
		return err
	}

	logger.Info("Maintenance status updated",
		zap.String("device_id", deviceID.String()),
		zap.String("maintenance_status", req.MaintenanceStatus),
	)

	return s.aggregator.PublishStatuses(ctx, []uuid.UUID{deviceID})
}

// SendCommand publishes a command to the device's command topic at QoS 1.
// A false publish result means the command is gone; no retry is queued.
func (s *Service) SendCommand(ctx context.Context, deviceID uuid.UUID, req *SendCommandRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"action": req.Action,
		"params": req.Params,
	})
	if err != nil {
		return err
	}

	if !s.broker.Publish(ingestion.CommandTopic(device.DeviceCode), payload, 1, false) {
		return appErrors.ErrCommandNotSent
	}

	logger.Info("Command published",
		zap.String("device_code", device.DeviceCode),
		zap.String("action", req.Action),
	)

	return nil
}

// GetLocationHistory returns the stored movement samples of a device.
func (s *Service) GetLocationHistory(ctx context.Context, deviceID uuid.UUID, limit int) ([]*LocationPoint, error) {
	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	samples, err := s.history.ListSamples(ctx, deviceID, limit)
	if err != nil {
		return nil, err
	}

	points := make([]*LocationPoint, len(samples))
	for i, sample := range samples {
		points[i] = &LocationPoint{
			Latitude:   sample.Latitude,
			Longitude:  sample.Longitude,
			RecordedAt: sample.RecordedAt,
		}
	}

	return points, nil
}

// GetMetricsHistory returns recent resource readings, newest first.
func (s *Service) GetMetricsHistory(ctx context.Context, deviceID uuid.UUID, limit int) ([]*MetricReading, error) {
	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	metrics, err := s.history.ListMetrics(ctx, deviceID, limit)
	if err != nil {
		return nil, err
	}

	readings := make([]*MetricReading, len(metrics))
	for i, m := range metrics {
		readings[i] = &MetricReading{
			CPULoad:          m.CPULoad,
			MemoryTotal:      m.MemoryTotal,
			MemoryUsed:       m.MemoryUsed,
			MemoryAvailable:  m.MemoryAvailable,
			StorageTotal:     m.StorageTotal,
			StorageUsed:      m.StorageUsed,
			StorageAvailable: m.StorageAvailable,
			NetworkType:      m.NetworkType,
			ForegroundApp:    m.ForegroundApp,
			RecordedAt:       m.RecordedAt,
		}
	}

	return readings, nil
}

// GetSimplifiedRoute returns a coarse path over the device's history
// suitable for downstream routing calls.
func (s *Service) GetSimplifiedRoute(ctx context.Context, deviceID uuid.UUID, minDistanceM float64) ([]*LocationPoint, error) {
	if minDistanceM <= 0 {
		minDistanceM = s.simplifyMinDistanceM
	}

	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	samples, err := s.history.ListSamples(ctx, deviceID, 0)
	if err != nil {
		return nil, err
	}

	points := make([]geo.Point, len(samples))
	for i, sample := range samples {
		points[i] = geo.Point{Latitude: sample.Latitude, Longitude: sample.Longitude}
	}

	simplified := geo.SimplifyRoute(points, minDistanceM, s.simplifyMaxPoints)

	out := make([]*LocationPoint, len(simplified))
	for i, p := range simplified {
		out[i] = &LocationPoint{Latitude: p.Latitude, Longitude: p.Longitude}
	}

	return out, nil
}
