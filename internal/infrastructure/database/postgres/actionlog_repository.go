package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tablet-fleet-manager/internal/domain/actionlog"
	"tablet-fleet-manager/internal/infrastructure/database/postgres/models"
)

// ActionLogRepository implements actionlog.Repository
type ActionLogRepository struct {
	db *DB
}

// NewActionLogRepository creates a new action log repository
func NewActionLogRepository(db *DB) actionlog.Repository {
	return &ActionLogRepository{db: db}
}

func (r *ActionLogRepository) Append(ctx context.Context, entry *actionlog.Entry) error {
	entry.ID = uuid.New()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	dbModel := &models.ActionLogModel{
		ID:        entry.ID,
		DeviceID:  entry.DeviceID,
		Action:    entry.Action,
		Payload:   entry.Payload,
		CreatedAt: entry.CreatedAt,
	}

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append action log entry: %w", err)
	}

	return nil
}

// FindMostRecent resolves through idx_log_device_action_time as a single
// backwards index scan: filter on the (device_id, action) prefix, range
// on created_at, order descending, limit 1.
func (r *ActionLogRepository) FindMostRecent(ctx context.Context, deviceID uuid.UUID, action string, from, to time.Time) (*actionlog.Entry, error) {
	var dbModel models.ActionLogModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND action = ? AND created_at >= ? AND created_at < ?", deviceID, action, from, to).
		Order("created_at DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, actionlog.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find action log entry: %w", err)
	}

	return toEntryEntity(&dbModel), nil
}

func (r *ActionLogRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*actionlog.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	var dbModels []models.ActionLogModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list action log entries: %w", err)
	}

	entries := make([]*actionlog.Entry, len(dbModels))
	for i := range dbModels {
		entries[i] = toEntryEntity(&dbModels[i])
	}

	return entries, nil
}

func toEntryEntity(m *models.ActionLogModel) *actionlog.Entry {
	return &actionlog.Entry{
		ID:        m.ID,
		DeviceID:  m.DeviceID,
		Action:    m.Action,
		Payload:   m.Payload,
		CreatedAt: m.CreatedAt,
	}
}
