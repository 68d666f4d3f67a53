package fleet

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablet-fleet-manager/internal/domain/checkout"
	"tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/realtime"
)

// Broadcaster pushes derived statuses to live observers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// Aggregator derives each device's fleet status from two independent
// facts: the maintenance flag on the device and the existence of an
// active checkout item. Precedence is IN_MAINTENANCE > IN_USE >
// AVAILABLE. It never writes; mutations elsewhere trigger it.
type Aggregator struct {
	devices   device.Repository
	checkouts checkout.Repository
	hub       Broadcaster
}

func NewAggregator(devices device.Repository, checkouts checkout.Repository, hub Broadcaster) *Aggregator {
	return &Aggregator{
		devices:   devices,
		checkouts: checkouts,
		hub:       hub,
	}
}

// maintenanceForcesStatus lists the flags that pull a device out of the
// fleet. DAMAGED is deliberately absent: the aggregator does not
// special-case it, matching the documented behavior.
func maintenanceForcesStatus(status device.MaintenanceStatus) bool {
	switch status {
	case device.MaintenanceHasProblem, device.MaintenanceNeedsRepair, device.MaintenanceInMaintenance:
		return true
	}
	return false
}

// ComputeStatus returns the derived status of a single device.
func (a *Aggregator) ComputeStatus(ctx context.Context, deviceID uuid.UUID) (device.FleetStatus, error) {
	statuses, err := a.ComputeStatuses(ctx, []uuid.UUID{deviceID})
	if err != nil {
		return "", err
	}
	return statuses[deviceID], nil
}

// ComputeStatuses is the batch form. It issues exactly one device lookup
// and one active-checkout lookup regardless of batch size, and produces
// the same per-device values as repeated single-device calls.
func (a *Aggregator) ComputeStatuses(ctx context.Context, deviceIDs []uuid.UUID) (map[uuid.UUID]device.FleetStatus, error) {
	statuses := make(map[uuid.UUID]device.FleetStatus, len(deviceIDs))
	for _, id := range deviceIDs {
		statuses[id] = device.FleetAvailable
	}

	devices, err := a.devices.GetByIDs(ctx, deviceIDs)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if maintenanceForcesStatus(d.MaintenanceStatus) {
			statuses[d.ID] = device.FleetInMaintenance
		}
	}

	items, err := a.checkouts.FindActiveItemsByDeviceIDs(ctx, deviceIDs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		// An active checkout never downgrades a device that maintenance
		// already pulled out of the fleet.
		if statuses[item.DeviceID] == device.FleetAvailable {
			statuses[item.DeviceID] = device.FleetInUse
		}
	}

	return statuses, nil
}

// PublishStatuses recomputes the statuses of the given devices and fans
// them out as device_borrow_status events. Called after checkout,
// return, and maintenance mutations.
func (a *Aggregator) PublishStatuses(ctx context.Context, deviceIDs []uuid.UUID) error {
	statuses, err := a.ComputeStatuses(ctx, deviceIDs)
	if err != nil {
		return err
	}

	devices, err := a.devices.GetByIDs(ctx, deviceIDs)
	if err != nil {
		return err
	}

	for _, d := range devices {
		status := statuses[d.ID]
		logger.Info("fleet status derived",
			zap.String("device_id", d.ID.String()),
			zap.String("device_code", d.DeviceCode),
			zap.String("status", string(status)),
		)
		a.hub.Broadcast(realtime.Event{
			Type:       realtime.EventDeviceBorrowStatus,
			DeviceID:   d.ID.String(),
			DeviceCode: d.DeviceCode,
			Data:       map[string]string{"status": string(status)},
		})
	}

	return nil
}
