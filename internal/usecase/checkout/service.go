package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainCheckout "tablet-fleet-manager/internal/domain/checkout"
	domainDevice "tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/fleet"
	"tablet-fleet-manager/internal/logger"
	appErrors "tablet-fleet-manager/pkg/errors"
	"tablet-fleet-manager/pkg/utils"
)

// Service implements checkout use cases
type Service struct {
	checkoutRepo domainCheckout.Repository
	deviceRepo   domainDevice.Repository
	aggregator   *fleet.Aggregator
}

// NewService creates a new checkout service
func NewService(checkoutRepo domainCheckout.Repository, deviceRepo domainDevice.Repository, aggregator *fleet.Aggregator) *Service {
	return &Service{
		checkoutRepo: checkoutRepo,
		deviceRepo:   deviceRepo,
		aggregator:   aggregator,
	}
}

// CreateCheckout borrows a set of devices. Every device must exist and
// derive AVAILABLE at the time of the call; the whole request fails
// otherwise. The new statuses are pushed to observers afterwards.
func (s *Service) CreateCheckout(ctx context.Context, req *CreateCheckoutRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	devices, err := s.deviceRepo.GetByIDs(ctx, req.DeviceIDs)
	if err != nil {
		return nil, err
	}
	if len(devices) != len(req.DeviceIDs) {
		return nil, appErrors.ErrDeviceNotFound
	}

	statuses, err := s.aggregator.ComputeStatuses(ctx, req.DeviceIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range req.DeviceIDs {
		if statuses[id] != domainDevice.FleetAvailable {
			logger.Warn("Checkout rejected, device not available",
				zap.String("device_id", id.String()),
				zap.String("status", string(statuses[id])),
			)
			return nil, appErrors.ErrDeviceUnavailable
		}
	}

	now := time.Now()
	co := &domainCheckout.Checkout{
		BorrowerName: req.BorrowerName,
		Note:         req.Note,
	}
	for _, id := range req.DeviceIDs {
		co.Items = append(co.Items, &domainCheckout.Item{
			DeviceID:     id,
			CheckedOutAt: now,
		})
	}

	if err := s.checkoutRepo.Create(ctx, co); err != nil {
		return nil, err
	}

	logger.Info("Checkout created",
		zap.String("checkout_id", co.ID.String()),
		zap.String("borrower", co.BorrowerName),
		zap.Int("device_count", len(co.Items)),
	)

	if err := s.aggregator.PublishStatuses(ctx, req.DeviceIDs); err != nil {
		logger.Error("Failed to publish statuses after checkout", zap.Error(err))
	}

	return ToCheckoutResponse(co), nil
}

// GetCheckout returns a checkout with its items.
func (s *Service) GetCheckout(ctx context.Context, checkoutID uuid.UUID) (*CheckoutResponse, error) {
	co, err := s.checkoutRepo.GetByID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	return ToCheckoutResponse(co), nil
}

// ReturnItem hands a single device back and pushes its recomputed
// status to observers.
func (s *Service) ReturnItem(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.checkoutRepo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.IsReturned() {
		return domainCheckout.ErrItemAlreadyReturned
	}

	if err := s.checkoutRepo.ReturnItem(ctx, itemID, time.Now()); err != nil {
		return err
	}

	logger.Info("Checkout item returned",
		zap.String("item_id", itemID.String()),
		zap.String("device_id", item.DeviceID.String()),
	)

	if err := s.aggregator.PublishStatuses(ctx, []uuid.UUID{item.DeviceID}); err != nil {
		logger.Error("Failed to publish statuses after return", zap.Error(err))
	}

	return nil
}
