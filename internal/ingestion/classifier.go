package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablet-fleet-manager/internal/domain/actionlog"
	"tablet-fleet-manager/internal/logger"
)

// HeartbeatMarker identifies synthetic boot pings: devices send periodic
// liveness events disguised as BOOT with this literal message.
const HeartbeatMarker = "Heartbeat"

const EventBoot = "BOOT"

// importantEvents is an allow-list. Absence from ignoredEvents is not
// sufficient for acceptance; unknown event types are rejected.
var importantEvents = map[string]struct{}{
	"BOOT":           {},
	"SHUTDOWN":       {},
	"LOCK":           {},
	"UNLOCK":         {},
	"KIOSK_ENABLED":  {},
	"KIOSK_DISABLED": {},
	"ERROR":          {},
}

var ignoredEvents = map[string]struct{}{
	"APP_OPENED": {},
	"APP_CLOSED": {},
	"HEARTBEAT":  {},
}

// ShouldLogEvent is the importance filter: only allow-listed event types
// produce action log entries.
func ShouldLogEvent(eventType string) bool {
	if _, ok := ignoredEvents[eventType]; ok {
		return false
	}
	_, ok := importantEvents[eventType]
	return ok
}

// Classifier decides whether an event message becomes an action log
// entry. It is state-free; the only external dependency is a read-only
// most-recent lookup on the log for BOOT deduplication.
type Classifier struct {
	logs actionlog.Repository
}

func NewClassifier(logs actionlog.Repository) *Classifier {
	return &Classifier{logs: logs}
}

// ShouldAccept applies the importance filter and, for BOOT events, the
// once-per-local-day dedup. All ambiguity resolves to rejection: fewer
// log writes beat fail-open duplication.
func (c *Classifier) ShouldAccept(ctx context.Context, deviceID uuid.UUID, msg *EventMessage, now time.Time) bool {
	if !ShouldLogEvent(msg.EventType) {
		return false
	}
	if msg.EventType != EventBoot {
		return true
	}

	// Heartbeat impostor: a liveness ping dressed up as a boot.
	if msg.Message != nil && *msg.Message == HeartbeatMarker {
		return false
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	prior, err := c.logs.FindMostRecent(ctx, deviceID, EventBoot, dayStart, dayEnd)
	if errors.Is(err, actionlog.ErrEntryNotFound) {
		return true
	}
	if err != nil {
		logger.Warn("boot dedup lookup failed, rejecting event",
			zap.String("device_id", deviceID.String()),
			zap.Error(err),
		)
		return false
	}

	// If the prior entry was itself a heartbeat impostor (logged before
	// the impostor rule existed), accept and let the genuine boot heal
	// the log. Uninspectable payloads reject.
	var priorPayload struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(prior.Payload, &priorPayload); err != nil {
		return false
	}
	if priorPayload.Message != nil && *priorPayload.Message == HeartbeatMarker {
		return true
	}

	return false
}
