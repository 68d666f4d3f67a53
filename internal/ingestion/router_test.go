package ingestion

import (
	"testing"

	"github.com/google/uuid"

	"tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/realtime"
)

func newTestRouter(devices ...*device.Device) (*Router, *fakeDeviceRepo, *fakeHistoryRepo, *fakeActionLog, *fakeHub) {
	deviceRepo := newFakeDeviceRepo(devices...)
	history := &fakeHistoryRepo{}
	logs := &fakeActionLog{}
	hub := &fakeHub{}
	router := NewRouter(deviceRepo, history, logs, NewClassifier(logs), hub, 50)
	return router, deviceRepo, history, logs, hub
}

func provisionedDevice(code string) *device.Device {
	return &device.Device{
		ID:                uuid.New(),
		DeviceCode:        code,
		ConnectionStatus:  device.ConnectionOffline,
		MaintenanceStatus: device.MaintenanceNone,
	}
}

func TestParseTopic(t *testing.T) {
	cases := []struct {
		topic    string
		wantCode string
		wantKind string
		wantOK   bool
	}{
		{"tablet/t-001/status", "t-001", KindStatus, true},
		{"tablet/t-001/location", "t-001", KindLocation, true},
		{"tablet/t-001/metrics", "t-001", KindMetrics, true},
		{"tablet/t-001/event", "t-001", KindEvent, true},
		{"tablet/t-001/command", "", "", false},
		{"tablet/t-001", "", "", false},
		{"other/t-001/status", "", "", false},
		{"tablet//status", "", "", false},
	}

	for _, tc := range cases {
		code, kind, ok := ParseTopic(tc.topic)
		if code != tc.wantCode || kind != tc.wantKind || ok != tc.wantOK {
			t.Fatalf("ParseTopic(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.topic, code, kind, ok, tc.wantCode, tc.wantKind, tc.wantOK)
		}
	}
}

func TestStatusMessageUpdatesSnapshot(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, repo, _, _, hub := newTestRouter(dev)

	router.HandleMessage("tablet/t-001/status", []byte(`{"batteryLevel":73,"isCharging":true,"isWifiOn":true}`))

	if dev.BatteryLevel == nil || *dev.BatteryLevel != 73 {
		t.Fatalf("expected battery snapshot overwritten, got %v", dev.BatteryLevel)
	}
	if dev.ConnectionStatus != device.ConnectionOnline {
		t.Fatalf("status receipt must mark the device ONLINE")
	}
	if dev.LastSeenAt == nil {
		t.Fatalf("status receipt must refresh last seen")
	}
	if repo.updates != 1 {
		t.Fatalf("expected one telemetry update, got %d", repo.updates)
	}

	types := hub.eventTypes()
	if len(types) != 1 || types[0] != realtime.EventDeviceStatus {
		t.Fatalf("expected one device_status broadcast, got %v", types)
	}
}

func TestStatusForGhostDeviceDropped(t *testing.T) {
	router, repo, _, _, hub := newTestRouter()

	router.HandleMessage("tablet/ghost-1/status", []byte(`{"batteryLevel":50}`))

	if len(repo.byCode) != 0 {
		t.Fatalf("unprovisioned telemetry must not create devices")
	}
	if len(hub.eventTypes()) != 0 {
		t.Fatalf("unprovisioned telemetry must not be broadcast")
	}

	m := router.Metrics()
	if m.MessagesDropped != 1 || m.MessagesHandled != 0 {
		t.Fatalf("expected one dropped message, got %+v", m)
	}
}

func TestMalformedPayloadDoesNotHaltRouter(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, _, _, hub := newTestRouter(dev)

	router.HandleMessage("tablet/t-001/status", []byte(`{not json`))
	router.HandleMessage("tablet/t-001/status", []byte(`{"batteryLevel":10}`))

	m := router.Metrics()
	if m.MessagesDropped != 1 || m.MessagesHandled != 1 {
		t.Fatalf("expected bad message isolated, got %+v", m)
	}
	if len(hub.eventTypes()) != 1 {
		t.Fatalf("good message after a bad one must still be broadcast")
	}
}

func TestUnknownTopicSuffixIgnored(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, _, _, hub := newTestRouter(dev)

	router.HandleMessage("tablet/t-001/firmware", []byte(`{}`))

	m := router.Metrics()
	if m.MessagesReceived != 0 {
		t.Fatalf("unknown suffix must be ignored silently, got %+v", m)
	}
	if len(hub.eventTypes()) != 0 {
		t.Fatalf("unknown suffix must not broadcast")
	}
}

func TestLocationSamplingThreshold(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, history, _, hub := newTestRouter(dev)

	// First fix: always sampled.
	router.HandleMessage("tablet/t-001/location", []byte(`{"latitude":21.0,"longitude":105.8}`))
	if len(history.samples) != 1 {
		t.Fatalf("first fix must be sampled, got %d samples", len(history.samples))
	}

	// ~11 m north: below the 50 m threshold, current position still moves.
	router.HandleMessage("tablet/t-001/location", []byte(`{"latitude":21.0001,"longitude":105.8}`))
	if len(history.samples) != 1 {
		t.Fatalf("sub-threshold move must not be sampled, got %d samples", len(history.samples))
	}
	if dev.Latitude == nil || *dev.Latitude != 21.0001 {
		t.Fatalf("current position must always follow the latest fix")
	}

	// ~66 m further north of the stored current position: sampled.
	router.HandleMessage("tablet/t-001/location", []byte(`{"latitude":21.0007,"longitude":105.8}`))
	if len(history.samples) != 2 {
		t.Fatalf("move past the threshold must be sampled, got %d samples", len(history.samples))
	}

	types := hub.eventTypes()
	if len(types) != 3 {
		t.Fatalf("every location message must broadcast the current position, got %v", types)
	}
	for _, typ := range types {
		if typ != realtime.EventDeviceLocation {
			t.Fatalf("unexpected event type %s", typ)
		}
	}
}

func TestLocationRangeValidation(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, history, _, _ := newTestRouter(dev)

	router.HandleMessage("tablet/t-001/location", []byte(`{"latitude":123.0,"longitude":105.8}`))

	if len(history.samples) != 0 {
		t.Fatalf("out-of-range fix must be dropped")
	}
	if router.Metrics().MessagesDropped != 1 {
		t.Fatalf("out-of-range fix must count as dropped")
	}
}

func TestMetricsMessageAppendsRecord(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, history, _, hub := newTestRouter(dev)

	payload := []byte(`{"cpu":0.42,"memory":{"total":4294967296,"used":2147483648,"available":2147483648},"storage":{"total":68719476736,"used":34359738368,"available":34359738368},"networkType":"wifi"}`)
	router.HandleMessage("tablet/t-001/metrics", payload)

	if len(history.metrics) != 1 {
		t.Fatalf("expected one metrics record, got %d", len(history.metrics))
	}
	metric := history.metrics[0]
	if metric.MemoryTotal != 4294967296 || metric.StorageTotal != 68719476736 {
		t.Fatalf("byte-scale capacities must round-trip, got %+v", metric)
	}

	types := hub.eventTypes()
	if len(types) != 1 || types[0] != realtime.EventDeviceMetrics {
		t.Fatalf("expected one device_metrics broadcast, got %v", types)
	}
}

func TestEventFiltering(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, _, logs, hub := newTestRouter(dev)

	router.HandleMessage("tablet/t-001/event", []byte(`{"eventType":"HEARTBEAT"}`))
	router.HandleMessage("tablet/t-001/event", []byte(`{"eventType":"APP_OPENED","message":"com.example"}`))
	router.HandleMessage("tablet/t-001/event", []byte(`{"eventType":"LOCK"}`))

	if len(logs.entries) != 1 || logs.entries[0].Action != "LOCK" {
		t.Fatalf("only the LOCK event must be logged, got %d entries", len(logs.entries))
	}
	types := hub.eventTypes()
	if len(types) != 1 || types[0] != realtime.EventDeviceEvent {
		t.Fatalf("only accepted events broadcast, got %v", types)
	}
}

func TestBootImpostorThenGenuineSameDay(t *testing.T) {
	dev := provisionedDevice("t-001")
	router, _, _, logs, _ := newTestRouter(dev)

	router.HandleMessage("tablet/t-001/event", []byte(`{"eventType":"BOOT","message":"Heartbeat"}`))
	if len(logs.entries) != 0 {
		t.Fatalf("impostor boot must not be logged")
	}

	router.HandleMessage("tablet/t-001/event", []byte(`{"eventType":"BOOT","message":"cold start"}`))
	if len(logs.entries) != 1 {
		t.Fatalf("genuine boot after an impostor must be logged as the first real boot of the day")
	}

	// A second genuine boot the same day is deduplicated.
	router.HandleMessage("tablet/t-001/event", []byte(`{"eventType":"BOOT","message":"warm start"}`))
	if len(logs.entries) != 1 {
		t.Fatalf("second genuine boot of the day must be rejected")
	}
}
