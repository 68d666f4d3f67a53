package telemetry

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for telemetry history operations
type Repository interface {
	AppendSample(ctx context.Context, sample *LocationSample) error
	ListSamples(ctx context.Context, deviceID uuid.UUID, limit int) ([]*LocationSample, error)
	AppendMetric(ctx context.Context, metric *DeviceMetric) error
	ListMetrics(ctx context.Context, deviceID uuid.UUID, limit int) ([]*DeviceMetric, error)
}
