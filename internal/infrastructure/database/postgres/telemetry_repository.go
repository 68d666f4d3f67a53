package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tablet-fleet-manager/internal/domain/telemetry"
	"tablet-fleet-manager/internal/infrastructure/database/postgres/models"
)

// TelemetryRepository implements telemetry.Repository
type TelemetryRepository struct {
	db *DB
}

// NewTelemetryRepository creates a new telemetry history repository
func NewTelemetryRepository(db *DB) telemetry.Repository {
	return &TelemetryRepository{db: db}
}

func (r *TelemetryRepository) AppendSample(ctx context.Context, sample *telemetry.LocationSample) error {
	sample.ID = uuid.New()
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}

	dbModel := &models.LocationSampleModel{
		ID:         sample.ID,
		DeviceID:   sample.DeviceID,
		Latitude:   sample.Latitude,
		Longitude:  sample.Longitude,
		Accuracy:   sample.Accuracy,
		Speed:      sample.Speed,
		Heading:    sample.Heading,
		RecordedAt: sample.RecordedAt,
	}

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append location sample: %w", err)
	}

	return nil
}

func (r *TelemetryRepository) ListSamples(ctx context.Context, deviceID uuid.UUID, limit int) ([]*telemetry.LocationSample, error) {
	if limit <= 0 {
		limit = 500
	}

	var dbModels []models.LocationSampleModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("recorded_at ASC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list location samples: %w", err)
	}

	samples := make([]*telemetry.LocationSample, len(dbModels))
	for i := range dbModels {
		m := &dbModels[i]
		samples[i] = &telemetry.LocationSample{
			ID:         m.ID,
			DeviceID:   m.DeviceID,
			Latitude:   m.Latitude,
			Longitude:  m.Longitude,
			Accuracy:   m.Accuracy,
			Speed:      m.Speed,
			Heading:    m.Heading,
			RecordedAt: m.RecordedAt,
		}
	}

	return samples, nil
}

func (r *TelemetryRepository) AppendMetric(ctx context.Context, metric *telemetry.DeviceMetric) error {
	metric.ID = uuid.New()
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = time.Now()
	}

	dbModel := &models.DeviceMetricModel{
		ID:               metric.ID,
		DeviceID:         metric.DeviceID,
		CPULoad:          metric.CPULoad,
		MemoryTotal:      metric.MemoryTotal,
		MemoryUsed:       metric.MemoryUsed,
		MemoryAvailable:  metric.MemoryAvailable,
		StorageTotal:     metric.StorageTotal,
		StorageUsed:      metric.StorageUsed,
		StorageAvailable: metric.StorageAvailable,
		NetworkType:      metric.NetworkType,
		ForegroundApp:    metric.ForegroundApp,
		RecordedAt:       metric.RecordedAt,
	}

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append device metric: %w", err)
	}

	return nil
}

func (r *TelemetryRepository) ListMetrics(ctx context.Context, deviceID uuid.UUID, limit int) ([]*telemetry.DeviceMetric, error) {
	if limit <= 0 {
		limit = 100
	}

	var dbModels []models.DeviceMetricModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list device metrics: %w", err)
	}

	metrics := make([]*telemetry.DeviceMetric, len(dbModels))
	for i := range dbModels {
		m := &dbModels[i]
		metrics[i] = &telemetry.DeviceMetric{
			ID:               m.ID,
			DeviceID:         m.DeviceID,
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

	return metrics, nil
}
