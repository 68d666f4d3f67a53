package ingestion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tablet-fleet-manager/internal/domain/actionlog"
	"tablet-fleet-manager/internal/domain/device"
	"tablet-fleet-manager/internal/domain/telemetry"
	"tablet-fleet-manager/internal/geo"
	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/realtime"
	pkgmqtt "tablet-fleet-manager/pkg/mqtt"
)

const handleTimeout = 5 * time.Second

// Broker is the subscription surface of the connection manager.
type Broker interface {
	Subscribe(topicPattern string, handler pkgmqtt.MessageHandler)
}

// Broadcaster pushes derived events to live observers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// Router maps inbound broker messages to the four telemetry kinds and
// applies the per-kind handling. Every message is handled in its own
// task; a bad message never takes down the subscriptions.
type Router struct {
	devices    device.Repository
	history    telemetry.Repository
	logs       actionlog.Repository
	classifier *Classifier
	hub        Broadcaster
	metrics    *MetricsTracker

	minSampleDistanceM float64

	now func() time.Time
}

func NewRouter(
	devices device.Repository,
	history telemetry.Repository,
	logs actionlog.Repository,
	classifier *Classifier,
	hub Broadcaster,
	minSampleDistanceM float64,
) *Router {
	return &Router{
		devices:            devices,
		history:            history,
		logs:               logs,
		classifier:         classifier,
		hub:                hub,
		metrics:            NewMetricsTracker(),
		minSampleDistanceM: minSampleDistanceM,
		now:                time.Now,
	}
}

// Start registers the four telemetry subscriptions with the broker. The
// connection manager keeps them across reconnects.
func (r *Router) Start(broker Broker) {
	for _, kind := range []string{KindStatus, KindLocation, KindMetrics, KindEvent} {
		broker.Subscribe(topicPrefix+"/+/"+kind, func(topic string, payload []byte) {
			go r.HandleMessage(topic, payload)
		})
	}
}

// Metrics returns a snapshot of the ingest counters.
func (r *Router) Metrics() IngestMetrics {
	return r.metrics.Snapshot()
}

// HandleMessage routes one inbound message. Errors are absorbed here:
// they are logged and counted, never propagated.
func (r *Router) HandleMessage(topic string, payload []byte) {
	deviceCode, kind, ok := ParseTopic(topic)
	if !ok {
		return
	}

	r.metrics.Update(func(m *IngestMetrics) { m.MessagesReceived++ })

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var err error
	switch kind {
	case KindStatus:
		err = r.handleStatus(ctx, deviceCode, payload)
	case KindLocation:
		err = r.handleLocation(ctx, deviceCode, payload)
	case KindMetrics:
		err = r.handleMetrics(ctx, deviceCode, payload)
	case KindEvent:
		err = r.handleEvent(ctx, deviceCode, payload)
	}

	if err != nil {
		logger.Warn("telemetry message dropped",
			zap.String("topic", topic),
			zap.String("device_code", deviceCode),
			zap.Error(err),
		)
		r.metrics.Update(func(m *IngestMetrics) { m.MessagesDropped++ })
		return
	}

	r.metrics.Update(func(m *IngestMetrics) {
		m.MessagesHandled++
		m.LastHandledAt = r.now()
	})
}

func (r *Router) handleStatus(ctx context.Context, deviceCode string, payload []byte) error {
	msg, err := ParseStatus(payload)
	if err != nil {
		return err
	}

	dev, err := r.devices.GetByCode(ctx, deviceCode)
	if err != nil {
		return err
	}

	snapshot := &device.TelemetrySnapshot{
		BatteryLevel:       msg.BatteryLevel,
		BatteryHealth:      msg.BatteryHealth,
		ChargingMethod:     msg.ChargingMethod,
		IsCharging:         msg.IsCharging,
		IsWifiOn:           msg.IsWifiOn,
		IsBluetoothOn:      msg.IsBluetoothOn,
		IsMobileDataOn:     msg.IsMobileDataOn,
		IsNetworkAvailable: msg.IsNetworkAvailable,
		IsScreenOn:         msg.IsScreenOn,
		VolumeLevel:        msg.VolumeLevel,
		InstalledAppCount:  msg.InstalledAppCount,
		SeenAt:             r.now(),
	}
	if msg.BootTime != nil {
		bootedAt := time.UnixMilli(*msg.BootTime)
		snapshot.BootedAt = &bootedAt
	}

	if err := r.devices.UpdateTelemetry(ctx, dev.ID, snapshot); err != nil {
		return err
	}

	r.hub.Broadcast(realtime.Event{
		Type:       realtime.EventDeviceStatus,
		DeviceID:   dev.ID.String(),
		DeviceCode: dev.DeviceCode,
		Data:       msg,
	})

	return nil
}

func (r *Router) handleLocation(ctx context.Context, deviceCode string, payload []byte) error {
	msg, err := ParseLocation(payload)
	if err != nil {
		return err
	}

	dev, err := r.devices.GetByCode(ctx, deviceCode)
	if err != nil {
		return err
	}

	now := r.now()
	next := geo.Point{Latitude: msg.Latitude, Longitude: msg.Longitude}

	var prev *geo.Point
	if dev.HasPosition() {
		prev = &geo.Point{Latitude: *dev.Latitude, Longitude: *dev.Longitude}
	}

	if geo.ShouldSample(prev, next, r.minSampleDistanceM) {
		sample := &telemetry.LocationSample{
			DeviceID:   dev.ID,
			Latitude:   msg.Latitude,
			Longitude:  msg.Longitude,
			Accuracy:   msg.Accuracy,
			Speed:      msg.Speed,
			Heading:    msg.Heading,
			RecordedAt: now,
		}
		if err := r.history.AppendSample(ctx, sample); err != nil {
			logger.Warn("failed to persist location sample",
				zap.String("device_code", deviceCode),
				zap.Error(err),
			)
		} else {
			r.metrics.Update(func(m *IngestMetrics) { m.SamplesStored++ })
		}
	}

	// The current position moves regardless of the sampling outcome.
	if err := r.devices.UpdateLocation(ctx, dev.ID, msg.Latitude, msg.Longitude, now); err != nil {
		return err
	}

	r.hub.Broadcast(realtime.Event{
		Type:       realtime.EventDeviceLocation,
		DeviceID:   dev.ID.String(),
		DeviceCode: dev.DeviceCode,
		Data:       msg,
	})

	return nil
}

func (r *Router) handleMetrics(ctx context.Context, deviceCode string, payload []byte) error {
	msg, err := ParseMetrics(payload)
	if err != nil {
		return err
	}

	dev, err := r.devices.GetByCode(ctx, deviceCode)
	if err != nil {
		return err
	}

	metric := &telemetry.DeviceMetric{
		DeviceID:         dev.ID,
		CPULoad:          msg.CPU,
		MemoryTotal:      msg.Memory.Total,
		MemoryUsed:       msg.Memory.Used,
		MemoryAvailable:  msg.Memory.Available,
		StorageTotal:     msg.Storage.Total,
		StorageUsed:      msg.Storage.Used,
		StorageAvailable: msg.Storage.Available,
		NetworkType:      msg.NetworkType,
		ForegroundApp:    msg.ForegroundApp,
		RecordedAt:       r.now(),
	}
	if err := r.history.AppendMetric(ctx, metric); err != nil {
		return err
	}

	r.hub.Broadcast(realtime.Event{
		Type:       realtime.EventDeviceMetrics,
		DeviceID:   dev.ID.String(),
		DeviceCode: dev.DeviceCode,
		Data:       msg,
	})

	return nil
}

func (r *Router) handleEvent(ctx context.Context, deviceCode string, payload []byte) error {
	msg, err := ParseEvent(payload)
	if err != nil {
		return err
	}

	dev, err := r.devices.GetByCode(ctx, deviceCode)
	if err != nil {
		return err
	}

	now := r.now()
	if !r.classifier.ShouldAccept(ctx, dev.ID, msg, now) {
		return nil
	}

	entry := &actionlog.Entry{
		DeviceID:  dev.ID,
		Action:    msg.EventType,
		Payload:   payload,
		CreatedAt: now,
	}
	if err := r.logs.Append(ctx, entry); err != nil {
		return err
	}
	r.metrics.Update(func(m *IngestMetrics) { m.EventsLogged++ })

	r.hub.Broadcast(realtime.Event{
		Type:       realtime.EventDeviceEvent,
		DeviceID:   dev.ID.String(),
		DeviceCode: dev.DeviceCode,
		Data: map[string]interface{}{
			"eventType": msg.EventType,
			"timestamp": msg.EventTime(now),
			"message":   msg.Message,
		},
	})

	return nil
}
