package mqtt

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"tablet-fleet-manager/internal/logger"
)

type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      int
	ConnectTimeout int
	// ReconnectDelay is a fixed delay between reconnect attempts. There
	// is deliberately no backoff or jitter; reconnection stays
	// deterministic for a small fixed fleet.
	ReconnectDelay time.Duration
}

// MessageHandler receives an inbound message for a subscribed topic.
type MessageHandler func(topic string, payload []byte)

// newPahoClient is swapped out in tests.
var newPahoClient = func(opts *mqtt.ClientOptions) mqtt.Client {
	return mqtt.NewClient(opts)
}

// Client owns the single broker session. Subscriptions are kept in a
// registry that survives disconnects: every Connect, including the
// automatic reconnects of the underlying transport, re-installs them.
type Client struct {
	client mqtt.Client
	config *Config

	mu       sync.RWMutex
	registry map[string]MessageHandler
	qos      byte
}

func NewClient(config *Config, qos byte) *Client {
	c := &Client{
		config:   config,
		registry: make(map[string]MessageHandler),
		qos:      qos,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(time.Duration(config.KeepAlive) * time.Second)
	opts.SetConnectTimeout(time.Duration(config.ConnectTimeout) * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(config.ReconnectDelay)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("mqtt client connected", zap.String("broker", config.Broker))
		c.replaySubscriptions(client)
	})

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})

	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Warn("reconnecting to MQTT broker", zap.String("broker", config.Broker))
	})

	c.client = newPahoClient(opts)

	return c
}

// Connect establishes the broker session. Calling it while already
// connected is a no-op. Registered subscriptions are installed by the
// on-connect handler, so they are replayed on reconnects too.
func (c *Client) Connect() error {
	if c.client.IsConnected() {
		return nil
	}

	logger.Info("connecting to MQTT broker", zap.String("broker", c.config.Broker))

	token := c.client.Connect()
	token.Wait()

	if err := token.Error(); err != nil {
		logger.Warn("failed to connect to MQTT broker", zap.Error(err))
		return err
	}

	return nil
}

// Subscribe registers a handler for a topic pattern. Re-registering an
// existing pattern replaces the handler. The registry entry is retained
// regardless of connection state; if connected, the subscription is
// issued immediately as well.
func (c *Client) Subscribe(topicPattern string, handler MessageHandler) {
	c.mu.Lock()
	c.registry[topicPattern] = handler
	c.mu.Unlock()

	if c.client.IsConnected() {
		c.subscribe(c.client, topicPattern, handler)
	}
}

// Publish serializes nothing and sends the payload as-is. The return
// value reports whether the send was attempted, not whether the broker
// acknowledged it; false means the message is gone, with no retry queued.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) bool {
	if !c.client.IsConnected() {
		logger.Warn("dropping publish, broker not connected", zap.String("topic", topic))
		return false
	}

	token := c.client.Publish(topic, qos, retained, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Warn("mqtt publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}()

	return true
}

// Disconnect gracefully closes the session. The subscription registry is
// left intact so a later Connect restores every subscription.
func (c *Client) Disconnect() {
	logger.Info("disconnecting from MQTT broker")
	c.client.Disconnect(250)
}

// IsConnected reports broker-session liveness.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

func (c *Client) replaySubscriptions(client mqtt.Client) {
	c.mu.RLock()
	entries := make(map[string]MessageHandler, len(c.registry))
	for pattern, handler := range c.registry {
		entries[pattern] = handler
	}
	c.mu.RUnlock()

	for pattern, handler := range entries {
		c.subscribe(client, pattern, handler)
	}
}

func (c *Client) subscribe(client mqtt.Client, topicPattern string, handler MessageHandler) {
	token := client.Subscribe(topicPattern, c.qos, func(client mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})

	token.Wait()
	if err := token.Error(); err != nil {
		logger.Warn("mqtt subscribe failed", zap.String("topic", topicPattern), zap.Error(err))
		return
	}

	logger.Info("subscribed to topic", zap.String("topic", topicPattern))
}
