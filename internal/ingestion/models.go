package ingestion

import (
	"encoding/json"
	"strings"
	"time"
)

// Message kinds carried in the topic suffix.
const (
	KindStatus   = "status"
	KindLocation = "location"
	KindMetrics  = "metrics"
	KindEvent    = "event"
)

const topicPrefix = "tablet"

// ParseTopic splits an inbound topic of the form tablet/{code}/{kind}.
// Topics that do not match any of the four known kinds report ok=false
// and are ignored by the router.
func ParseTopic(topic string) (deviceCode, kind string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != topicPrefix || parts[1] == "" {
		return "", "", false
	}

	switch parts[2] {
	case KindStatus, KindLocation, KindMetrics, KindEvent:
		return parts[1], parts[2], true
	}
	return "", "", false
}

// CommandTopic returns the egress topic for a device.
func CommandTopic(deviceCode string) string {
	return topicPrefix + "/" + deviceCode + "/command"
}

// StatusMessage is the live telemetry snapshot a device reports.
type StatusMessage struct {
	BatteryLevel       *int    `json:"batteryLevel"`
	BatteryHealth      *string `json:"batteryHealth"`
	ChargingMethod     *string `json:"chargingMethod"`
	IsCharging         bool    `json:"isCharging"`
	IsWifiOn           bool    `json:"isWifiOn"`
	IsBluetoothOn      bool    `json:"isBluetoothOn"`
	IsMobileDataOn     bool    `json:"isMobileDataOn"`
	IsNetworkAvailable bool    `json:"isNetworkAvailable"`
	IsScreenOn         bool    `json:"isScreenOn"`
	VolumeLevel        *int    `json:"volumeLevel"`
	InstalledAppCount  *int    `json:"installedAppCount"`
	BootTime           *int64  `json:"bootTime"` // epoch milliseconds
}

// LocationMessage is a reported GPS fix.
type LocationMessage struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
}

// MetricsMessage is a resource usage report. Memory and storage values
// are byte counts.
type MetricsMessage struct {
	CPU           float64      `json:"cpu"`
	Memory        ResourcePool `json:"memory"`
	Storage       ResourcePool `json:"storage"`
	NetworkType   *string      `json:"networkType"`
	ForegroundApp *string      `json:"foregroundApp"`
}

type ResourcePool struct {
	Total     int64 `json:"total"`
	Used      int64 `json:"used"`
	Available int64 `json:"available"`
}

// EventMessage is a device lifecycle event.
type EventMessage struct {
	EventType string  `json:"eventType"`
	Message   *string `json:"message"`
	Timestamp *int64  `json:"timestamp"` // epoch milliseconds
}

func ParseStatus(payload []byte) (*StatusMessage, error) {
	var msg StatusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func ParseLocation(payload []byte) (*LocationMessage, error) {
	var msg LocationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	if err := ValidateLocation(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func ParseMetrics(payload []byte) (*MetricsMessage, error) {
	var msg MetricsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func ParseEvent(payload []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	if msg.EventType == "" {
		return nil, &ValidationError{Field: "eventType", Message: "eventType is required"}
	}
	return &msg, nil
}

// EventTime resolves the event timestamp, falling back to now.
func (m *EventMessage) EventTime(now time.Time) time.Time {
	if m.Timestamp == nil {
		return now
	}
	return time.UnixMilli(*m.Timestamp)
}
