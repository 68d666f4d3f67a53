package models

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutModel struct {
	ID           uuid.UUID  `gorm:"column:id;primaryKey"`
	BorrowerName string     `gorm:"column:borrower_name;not null"`
	Note         *string    `gorm:"column:note"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	DeletedAt    *time.Time `gorm:"column:deleted_at;index"`

	Items []CheckoutItemModel `gorm:"foreignKey:CheckoutID"`
}

func (CheckoutModel) TableName() string {
	return "checkouts"
}

type CheckoutItemModel struct {
	ID           uuid.UUID  `gorm:"column:id;primaryKey"`
	CheckoutID   uuid.UUID  `gorm:"column:checkout_id;index;not null"`
	DeviceID     uuid.UUID  `gorm:"column:device_id;index:idx_item_device_returned;not null"`
	CheckedOutAt time.Time  `gorm:"column:checked_out_at;not null"`
	ReturnedAt   *time.Time `gorm:"column:returned_at;index:idx_item_device_returned"`
}

func (CheckoutItemModel) TableName() string {
	return "checkout_items"
}
