package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionLogModel carries the composite index that makes the per-day
// most-recent BOOT lookup a point query.
type ActionLogModel struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey"`
	DeviceID  uuid.UUID `gorm:"column:device_id;index:idx_log_device_action_time,priority:1;not null"`
	Action    string    `gorm:"column:action;index:idx_log_device_action_time,priority:2;not null"`
	Payload   []byte    `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_log_device_action_time,priority:3;not null"`
}

func (ActionLogModel) TableName() string {
	return "action_logs"
}
