package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"tablet-fleet-manager/internal/domain/actionlog"
)

func strPtr(s string) *string { return &s }

func TestShouldLogEventAllowList(t *testing.T) {
	cases := []struct {
		eventType string
		want      bool
	}{
		{"BOOT", true},
		{"SHUTDOWN", true},
		{"LOCK", true},
		{"UNLOCK", true},
		{"KIOSK_ENABLED", true},
		{"KIOSK_DISABLED", true},
		{"ERROR", true},
		{"HEARTBEAT", false},
		{"APP_OPENED", false},
		{"APP_CLOSED", false},
		{"UNKNOWN_TYPE", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ShouldLogEvent(tc.eventType); got != tc.want {
			t.Fatalf("ShouldLogEvent(%q) = %v, want %v", tc.eventType, got, tc.want)
		}
	}
}

func TestBootHeartbeatImpostorRejected(t *testing.T) {
	logs := &fakeActionLog{}
	c := NewClassifier(logs)
	deviceID := uuid.New()

	msg := &EventMessage{EventType: "BOOT", Message: strPtr(HeartbeatMarker)}
	if c.ShouldAccept(context.Background(), deviceID, msg, time.Now()) {
		t.Fatalf("heartbeat impostor must be rejected")
	}
	if logs.lookups != 0 {
		t.Fatalf("impostor rejection must not hit the log")
	}
}

func TestBootFirstOfDayAccepted(t *testing.T) {
	c := NewClassifier(&fakeActionLog{})
	msg := &EventMessage{EventType: "BOOT", Message: strPtr("cold start")}
	if !c.ShouldAccept(context.Background(), uuid.New(), msg, time.Now()) {
		t.Fatalf("first genuine boot of the day must be accepted")
	}
}

func TestBootSecondGenuineRejected(t *testing.T) {
	deviceID := uuid.New()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	logs := &fakeActionLog{}
	logs.entries = append(logs.entries, &actionlog.Entry{
		DeviceID:  deviceID,
		Action:    "BOOT",
		Payload:   []byte(`{"eventType":"BOOT","message":"cold start"}`),
		CreatedAt: now.Add(-2 * time.Hour),
	})

	c := NewClassifier(logs)
	msg := &EventMessage{EventType: "BOOT", Message: strPtr("warm start")}
	if c.ShouldAccept(context.Background(), deviceID, msg, now) {
		t.Fatalf("second genuine boot of the same day must be rejected")
	}
}

func TestBootAcceptedNextDay(t *testing.T) {
	deviceID := uuid.New()
	now := time.Date(2026, 3, 11, 0, 30, 0, 0, time.Local)

	logs := &fakeActionLog{}
	logs.entries = append(logs.entries, &actionlog.Entry{
		DeviceID:  deviceID,
		Action:    "BOOT",
		Payload:   []byte(`{"eventType":"BOOT","message":"cold start"}`),
		CreatedAt: now.Add(-2 * time.Hour), // previous calendar day
	})

	c := NewClassifier(logs)
	msg := &EventMessage{EventType: "BOOT"}
	if !c.ShouldAccept(context.Background(), deviceID, msg, now) {
		t.Fatalf("boot on a new calendar day must be accepted")
	}
}

func TestBootSelfHealsImpostorEntry(t *testing.T) {
	deviceID := uuid.New()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	// A pre-rule impostor made it into the log earlier today.
	logs := &fakeActionLog{}
	logs.entries = append(logs.entries, &actionlog.Entry{
		DeviceID:  deviceID,
		Action:    "BOOT",
		Payload:   []byte(`{"eventType":"BOOT","message":"Heartbeat"}`),
		CreatedAt: now.Add(-3 * time.Hour),
	})

	c := NewClassifier(logs)
	msg := &EventMessage{EventType: "BOOT", Message: strPtr("cold start")}
	if !c.ShouldAccept(context.Background(), deviceID, msg, now) {
		t.Fatalf("genuine boot must be accepted when the prior entry was an impostor")
	}
}

func TestBootLookupFailureRejects(t *testing.T) {
	c := NewClassifier(&fakeActionLog{failAll: true})
	msg := &EventMessage{EventType: "BOOT"}
	if c.ShouldAccept(context.Background(), uuid.New(), msg, time.Now()) {
		t.Fatalf("lookup failure must resolve to rejection")
	}
}

func TestBootUninspectablePriorPayloadRejects(t *testing.T) {
	deviceID := uuid.New()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	logs := &fakeActionLog{}
	logs.entries = append(logs.entries, &actionlog.Entry{
		DeviceID:  deviceID,
		Action:    "BOOT",
		Payload:   []byte(`not-json`),
		CreatedAt: now.Add(-1 * time.Hour),
	})

	c := NewClassifier(logs)
	msg := &EventMessage{EventType: "BOOT"}
	if c.ShouldAccept(context.Background(), deviceID, msg, now) {
		t.Fatalf("uninspectable prior payload must resolve to rejection")
	}
}

func TestNonBootImportantSkipsDedup(t *testing.T) {
	logs := &fakeActionLog{}
	c := NewClassifier(logs)

	msg := &EventMessage{EventType: "LOCK"}
	if !c.ShouldAccept(context.Background(), uuid.New(), msg, time.Now()) {
		t.Fatalf("LOCK must be accepted")
	}
	if logs.lookups != 0 {
		t.Fatalf("non-boot events must not query the log")
	}
}
