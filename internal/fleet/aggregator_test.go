package fleet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"tablet-fleet-manager/internal/domain/checkout"
	"tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/realtime"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeDeviceRepo embeds the interface so only the methods the aggregator
// uses need implementations.
type fakeDeviceRepo struct {
	device.Repository
	devices []*device.Device
	queries int
}

func (r *fakeDeviceRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*device.Device, error) {
	r.queries++
	var out []*device.Device
	for _, id := range ids {
		for _, d := range r.devices {
			if d.ID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

type fakeCheckoutRepo struct {
	checkout.Repository
	activeDeviceIDs []uuid.UUID
	queries         int
}

func (r *fakeCheckoutRepo) FindActiveItemsByDeviceIDs(_ context.Context, ids []uuid.UUID) ([]*checkout.Item, error) {
	r.queries++
	var out []*checkout.Item
	for _, want := range ids {
		for _, active := range r.activeDeviceIDs {
			if want == active {
				out = append(out, &checkout.Item{
					ID:           uuid.New(),
					DeviceID:     active,
					CheckedOutAt: time.Now(),
				})
			}
		}
	}
	return out, nil
}

type fakeHub struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (h *fakeHub) Broadcast(event realtime.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func newDevice(maintenance device.MaintenanceStatus) *device.Device {
	return &device.Device{
		ID:                uuid.New(),
		DeviceCode:        "t-" + uuid.NewString()[:8],
		MaintenanceStatus: maintenance,
	}
}

func TestAvailableByDefault(t *testing.T) {
	d := newDevice(device.MaintenanceNone)
	agg := NewAggregator(&fakeDeviceRepo{devices: []*device.Device{d}}, &fakeCheckoutRepo{}, &fakeHub{})

	status, err := agg.ComputeStatus(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if status != device.FleetAvailable {
		t.Fatalf("expected AVAILABLE, got %s", status)
	}
}

func TestActiveCheckoutEscalatesToInUse(t *testing.T) {
	d := newDevice(device.MaintenanceNone)
	checkouts := &fakeCheckoutRepo{activeDeviceIDs: []uuid.UUID{d.ID}}
	agg := NewAggregator(&fakeDeviceRepo{devices: []*device.Device{d}}, checkouts, &fakeHub{})

	status, err := agg.ComputeStatus(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if status != device.FleetInUse {
		t.Fatalf("expected IN_USE, got %s", status)
	}
}

func TestMaintenanceBeatsActiveCheckout(t *testing.T) {
	for _, m := range []device.MaintenanceStatus{
		device.MaintenanceHasProblem,
		device.MaintenanceNeedsRepair,
		device.MaintenanceInMaintenance,
	} {
		d := newDevice(m)
		checkouts := &fakeCheckoutRepo{activeDeviceIDs: []uuid.UUID{d.ID}}
		agg := NewAggregator(&fakeDeviceRepo{devices: []*device.Device{d}}, checkouts, &fakeHub{})

		status, err := agg.ComputeStatus(context.Background(), d.ID)
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if status != device.FleetInMaintenance {
			t.Fatalf("maintenance %s with active checkout: expected IN_MAINTENANCE, got %s", m, status)
		}
	}
}

func TestDamagedDoesNotForceMaintenance(t *testing.T) {
	d := newDevice(device.MaintenanceDamaged)
	agg := NewAggregator(&fakeDeviceRepo{devices: []*device.Device{d}}, &fakeCheckoutRepo{}, &fakeHub{})

	status, err := agg.ComputeStatus(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if status != device.FleetAvailable {
		t.Fatalf("DAMAGED is not special-cased; expected AVAILABLE, got %s", status)
	}
}

func TestBatchMatchesSingles(t *testing.T) {
	a := newDevice(device.MaintenanceNone)
	b := newDevice(device.MaintenanceNeedsRepair)
	c := newDevice(device.MaintenanceNone)

	devices := &fakeDeviceRepo{devices: []*device.Device{a, b, c}}
	checkouts := &fakeCheckoutRepo{activeDeviceIDs: []uuid.UUID{a.ID, b.ID}}
	agg := NewAggregator(devices, checkouts, &fakeHub{})

	batch, err := agg.ComputeStatuses(context.Background(), []uuid.UUID{a.ID, b.ID, c.ID})
	if err != nil {
		t.Fatalf("batch compute failed: %v", err)
	}

	for _, d := range []*device.Device{a, b, c} {
		single, err := agg.ComputeStatus(context.Background(), d.ID)
		if err != nil {
			t.Fatalf("single compute failed: %v", err)
		}
		if batch[d.ID] != single {
			t.Fatalf("batch and single disagree for %s: %s vs %s", d.ID, batch[d.ID], single)
		}
	}

	if batch[a.ID] != device.FleetInUse || batch[b.ID] != device.FleetInMaintenance || batch[c.ID] != device.FleetAvailable {
		t.Fatalf("unexpected batch result: %v", batch)
	}
}

func TestBatchIssuesTwoQueries(t *testing.T) {
	a := newDevice(device.MaintenanceNone)
	b := newDevice(device.MaintenanceNone)
	c := newDevice(device.MaintenanceNone)

	devices := &fakeDeviceRepo{devices: []*device.Device{a, b, c}}
	checkouts := &fakeCheckoutRepo{}
	agg := NewAggregator(devices, checkouts, &fakeHub{})

	if _, err := agg.ComputeStatuses(context.Background(), []uuid.UUID{a.ID, b.ID, c.ID}); err != nil {
		t.Fatalf("batch compute failed: %v", err)
	}

	if devices.queries != 1 {
		t.Fatalf("expected one device lookup, got %d", devices.queries)
	}
	if checkouts.queries != 1 {
		t.Fatalf("expected one checkout lookup, got %d", checkouts.queries)
	}
}

func TestPublishStatusesBroadcasts(t *testing.T) {
	d := newDevice(device.MaintenanceNone)
	hub := &fakeHub{}
	checkouts := &fakeCheckoutRepo{activeDeviceIDs: []uuid.UUID{d.ID}}
	agg := NewAggregator(&fakeDeviceRepo{devices: []*device.Device{d}}, checkouts, hub)

	if err := agg.PublishStatuses(context.Background(), []uuid.UUID{d.ID}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(hub.events) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(hub.events))
	}
	event := hub.events[0]
	if event.Type != realtime.EventDeviceBorrowStatus {
		t.Fatalf("expected device_borrow_status, got %s", event.Type)
	}
	if event.DeviceCode != d.DeviceCode {
		t.Fatalf("expected device code on the envelope")
	}
	data, ok := event.Data.(map[string]string)
	if !ok || data["status"] != string(device.FleetInUse) {
		t.Fatalf("unexpected payload: %+v", event.Data)
	}
}
