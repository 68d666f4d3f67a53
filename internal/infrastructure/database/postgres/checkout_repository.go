package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainCheckout "tablet-fleet-manager/internal/domain/checkout"
	"tablet-fleet-manager/internal/infrastructure/database/postgres/models"
)

// CheckoutRepository implements domainCheckout.Repository
type CheckoutRepository struct {
	db *DB
}

// NewCheckoutRepository creates a new checkout repository
func NewCheckoutRepository(db *DB) domainCheckout.Repository {
	return &CheckoutRepository{db: db}
}

func (r *CheckoutRepository) Create(ctx context.Context, c *domainCheckout.Checkout) error {
	now := time.Now()
	c.ID = uuid.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	dbModel := &models.CheckoutModel{
		ID:           c.ID,
		BorrowerName: c.BorrowerName,
		Note:         c.Note,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	for _, item := range c.Items {
		item.ID = uuid.New()
		item.CheckoutID = c.ID
		if item.CheckedOutAt.IsZero() {
			item.CheckedOutAt = now
		}
		dbModel.Items = append(dbModel.Items, models.CheckoutItemModel{
			ID:           item.ID,
			CheckoutID:   item.CheckoutID,
			DeviceID:     item.DeviceID,
			CheckedOutAt: item.CheckedOutAt,
		})
	}

	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dbModel).Error; err != nil {
			return fmt.Errorf("failed to create checkout: %w", err)
		}
		return nil
	})
}

func (r *CheckoutRepository) GetByID(ctx context.Context, checkoutID uuid.UUID) (*domainCheckout.Checkout, error) {
	var dbModel models.CheckoutModel
	err := r.db.DB.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND deleted_at IS NULL", checkoutID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCheckout.ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout: %w", err)
	}

	return toCheckoutEntity(&dbModel), nil
}

func (r *CheckoutRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*domainCheckout.Item, error) {
	var dbModel models.CheckoutItemModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", itemID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCheckout.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout item: %w", err)
	}

	return toItemEntity(&dbModel), nil
}

func (r *CheckoutRepository) ReturnItem(ctx context.Context, itemID uuid.UUID, returnedAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.CheckoutItemModel{}).
		Where("id = ? AND returned_at IS NULL", itemID).
		Update("returned_at", returnedAt)

	if result.Error != nil {
		return fmt.Errorf("failed to return item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainCheckout.ErrItemAlreadyReturned
	}

	return nil
}

func (r *CheckoutRepository) FindActiveItemsByDeviceIDs(ctx context.Context, deviceIDs []uuid.UUID) ([]*domainCheckout.Item, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	var dbModels []models.CheckoutItemModel
	err := r.db.DB.WithContext(ctx).
		Joins("INNER JOIN checkouts ON checkouts.id = checkout_items.checkout_id").
		Where("checkout_items.device_id IN ?", deviceIDs).
		Where("checkout_items.returned_at IS NULL").
		Where("checkouts.deleted_at IS NULL").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active checkout items: %w", err)
	}

	items := make([]*domainCheckout.Item, len(dbModels))
	for i := range dbModels {
		items[i] = toItemEntity(&dbModels[i])
	}

	return items, nil
}

func toCheckoutEntity(m *models.CheckoutModel) *domainCheckout.Checkout {
	c := &domainCheckout.Checkout{
		ID:           m.ID,
		BorrowerName: m.BorrowerName,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		DeletedAt:    m.DeletedAt,
	}
	for i := range m.Items {
		c.Items = append(c.Items, toItemEntity(&m.Items[i]))
	}
	return c
}

func toItemEntity(m *models.CheckoutItemModel) *domainCheckout.Item {
	return &domainCheckout.Item{
		ID:           m.ID,
		CheckoutID:   m.CheckoutID,
		DeviceID:     m.DeviceID,
		CheckedOutAt: m.CheckedOutAt,
		ReturnedAt:   m.ReturnedAt,
	}
}
