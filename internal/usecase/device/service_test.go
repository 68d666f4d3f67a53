package device

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	domainCheckout "tablet-fleet-manager/internal/domain/checkout"
	domainDevice "tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/domain/telemetry"
	"tablet-fleet-manager/internal/fleet"
	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/realtime"
	appErrors "tablet-fleet-manager/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeDeviceRepo struct {
	domainDevice.Repository

	devices map[uuid.UUID]*domainDevice.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[uuid.UUID]*domainDevice.Device)}
}

func (f *fakeDeviceRepo) Create(_ context.Context, d *domainDevice.Device) error {
	d.ID = uuid.New()
	f.devices[d.ID] = d
	return nil
}

func (f *fakeDeviceRepo) GetByID(_ context.Context, id uuid.UUID) (*domainDevice.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, domainDevice.ErrDeviceNotFound
	}
	return d, nil
}

func (f *fakeDeviceRepo) GetByCode(_ context.Context, code string) (*domainDevice.Device, error) {
	for _, d := range f.devices {
		if d.DeviceCode == code {
			return d, nil
		}
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (f *fakeDeviceRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domainDevice.Device, error) {
	var out []*domainDevice.Device
	for _, id := range ids {
		if d, ok := f.devices[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeviceRepo) UpdateMaintenanceStatus(_ context.Context, id uuid.UUID, status domainDevice.MaintenanceStatus) error {
	d, ok := f.devices[id]
	if !ok {
		return domainDevice.ErrDeviceNotFound
	}
	d.MaintenanceStatus = status
	return nil
}

type fakeCheckoutRepo struct {
	domainCheckout.Repository

	active map[uuid.UUID]bool
}

func (f *fakeCheckoutRepo) FindActiveItemsByDeviceIDs(_ context.Context, ids []uuid.UUID) ([]*domainCheckout.Item, error) {
	var out []*domainCheckout.Item
	for _, id := range ids {
		if f.active[id] {
			out = append(out, &domainCheckout.Item{ID: uuid.New(), DeviceID: id})
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	telemetry.Repository

	samples []*telemetry.LocationSample
}

func (f *fakeHistoryRepo) ListSamples(_ context.Context, _ uuid.UUID, limit int) ([]*telemetry.LocationSample, error) {
	if limit > 0 && limit < len(f.samples) {
		return f.samples[:limit], nil
	}
	return f.samples, nil
}

type fakeHub struct {
	events []realtime.Event
}

func (f *fakeHub) Broadcast(event realtime.Event) {
	f.events = append(f.events, event)
}

type fakePublisher struct {
	topics    []string
	qos       []byte
	connected bool
}

func (f *fakePublisher) Publish(topic string, _ []byte, qos byte, _ bool) bool {
	if !f.connected {
		return false
	}
	f.topics = append(f.topics, topic)
	f.qos = append(f.qos, qos)
	return true
}

func newTestService(devices *fakeDeviceRepo, checkouts *fakeCheckoutRepo, publisher *fakePublisher) (*Service, *fakeHub) {
	hub := &fakeHub{}
	aggregator := fleet.NewAggregator(devices, checkouts, hub)
	svc := NewService(devices, &fakeHistoryRepo{}, aggregator, publisher, 200, 15)
	return svc, hub
}

func provision(t *testing.T, repo *fakeDeviceRepo, code string) *domainDevice.Device {
	t.Helper()
	d := &domainDevice.Device{
		DeviceCode:        code,
		ConnectionStatus:  domainDevice.ConnectionOffline,
		MaintenanceStatus: domainDevice.MaintenanceNone,
	}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("provision: %v", err)
	}
	return d
}

func TestCreateDeviceRejectsDuplicateCode(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	svc, _ := newTestService(devices, checkouts, &fakePublisher{connected: true})

	if _, err := svc.CreateDevice(context.Background(), &CreateDeviceRequest{DeviceCode: "TAB-001"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateDevice(context.Background(), &CreateDeviceRequest{DeviceCode: "TAB-001"}); err == nil {
		t.Fatal("expected duplicate code to be rejected")
	}
}

func TestSendCommandPublishesToCommandTopic(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	publisher := &fakePublisher{connected: true}
	svc, _ := newTestService(devices, checkouts, publisher)

	d := provision(t, devices, "TAB-007")

	err := svc.SendCommand(context.Background(), d.ID, &SendCommandRequest{Action: "reboot"})
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if len(publisher.topics) != 1 {
		t.Fatalf("expected one publish, got %d", len(publisher.topics))
	}
	if got, want := publisher.topics[0], "tablet/TAB-007/command"; got != want {
		t.Fatalf("topic = %q, want %q", got, want)
	}
	if publisher.qos[0] != 1 {
		t.Fatalf("qos = %d, want 1", publisher.qos[0])
	}
}

func TestSendCommandWhileDisconnected(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	svc, _ := newTestService(devices, checkouts, &fakePublisher{connected: false})

	d := provision(t, devices, "TAB-008")

	err := svc.SendCommand(context.Background(), d.ID, &SendCommandRequest{Action: "lock"})
	if !errors.Is(err, appErrors.ErrCommandNotSent) {
		t.Fatalf("err = %v, want ErrCommandNotSent", err)
	}
}

func TestUpdateMaintenanceStatusPushesDerivedStatus(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	svc, hub := newTestService(devices, checkouts, &fakePublisher{connected: true})

	d := provision(t, devices, "TAB-042")

	err := svc.UpdateMaintenanceStatus(context.Background(), d.ID, &UpdateMaintenanceRequest{
		MaintenanceStatus: "NEEDS_REPAIR",
	})
	if err != nil {
		t.Fatalf("UpdateMaintenanceStatus: %v", err)
	}

	if devices.devices[d.ID].MaintenanceStatus != domainDevice.MaintenanceNeedsRepair {
		t.Fatalf("maintenance status not persisted")
	}
	if len(hub.events) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(hub.events))
	}
	event := hub.events[0]
	if event.Type != realtime.EventDeviceBorrowStatus {
		t.Fatalf("event type = %q", event.Type)
	}
	data, ok := event.Data.(map[string]string)
	if !ok || data["status"] != string(domainDevice.FleetInMaintenance) {
		t.Fatalf("event data = %#v, want IN_MAINTENANCE", event.Data)
	}
}

func TestUpdateMaintenanceStatusRejectsUnknownValue(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	svc, _ := newTestService(devices, checkouts, &fakePublisher{connected: true})

	d := provision(t, devices, "TAB-043")

	err := svc.UpdateMaintenanceStatus(context.Background(), d.ID, &UpdateMaintenanceRequest{
		MaintenanceStatus: "BROKEN",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Invalid input") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetSimplifiedRouteBounds(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	hub := &fakeHub{}
	aggregator := fleet.NewAggregator(devices, checkouts, hub)

	// 60 samples spaced ~300 m apart along a meridian.
	history := &fakeHistoryRepo{}
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		history.samples = append(history.samples, &telemetry.LocationSample{
			Latitude:   21.0 + float64(i)*0.0027,
			Longitude:  105.8,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	svc := NewService(devices, history, aggregator, &fakePublisher{connected: true}, 200, 15)

	d := provision(t, devices, "TAB-100")

	points, err := svc.GetSimplifiedRoute(context.Background(), d.ID, 0)
	if err != nil {
		t.Fatalf("GetSimplifiedRoute: %v", err)
	}
	if len(points) > 15 {
		t.Fatalf("route has %d points, want at most 15", len(points))
	}
	first := history.samples[0]
	last := history.samples[len(history.samples)-1]
	if points[0].Latitude != first.Latitude {
		t.Fatalf("first point not preserved")
	}
	if points[len(points)-1].Latitude != last.Latitude {
		t.Fatalf("last point not preserved")
	}
}

func TestGetDeviceAnnotatesFleetStatus(t *testing.T) {
	devices := newFakeDeviceRepo()
	checkouts := &fakeCheckoutRepo{active: make(map[uuid.UUID]bool)}
	svc, _ := newTestService(devices, checkouts, &fakePublisher{connected: true})

	d := provision(t, devices, "TAB-200")
	checkouts.active[d.ID] = true

	resp, err := svc.GetDevice(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if resp.FleetStatus != string(domainDevice.FleetInUse) {
		t.Fatalf("fleet status = %q, want IN_USE", resp.FleetStatus)
	}
}
