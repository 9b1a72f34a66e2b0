package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/havenhome/haven-core/internal/infrastructure/config"
)

const (
	// defaultConnectTimeout bounds the initial broker connection attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds a single publish acknowledgement wait.
	defaultPublishTimeout = 5 * time.Second

	// disconnectQuiesceMS is how long paho waits for in-flight messages on close.
	disconnectQuiesceMS = 250

	// maxQoS is the highest valid MQTT QoS level.
	maxQoS = 2

	// maxPayloadSize caps event payloads (64 KB); events are small JSON documents.
	maxPayloadSize = 64 << 10
)

// Client wraps paho.mqtt.golang for publishing Haven events.
//
// The broker is an optional collaborator: a nil *Client is valid and all
// publish methods on it are no-ops, so callers never need to branch on
// whether eventing is configured.
//
// All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	qos    byte

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the MQTT broker with auto-reconnect.
// Returns an error if the initial connection does not succeed within the
// connect timeout.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectTimeout(defaultConnectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// Last will: mark the service offline if the connection drops uncleanly.
	opts.SetWill(TopicSystemStatus, `{"online":false}`, byte(cfg.QoS), true)

	c := &Client{qos: byte(cfg.QoS)}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.setConnected(true)
		c.publishOnlineStatus()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, _ error) {
		c.setConnected(false)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously; set state here so
	// IsConnected() is accurate immediately after Connect returns.
	c.setConnected(true)

	return c, nil
}

// IsConnected reports whether the client currently has a broker connection.
// A nil client reports false.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// Publish sends a message to the specified topic at the configured QoS.
// On a nil client this is a no-op.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if c == nil {
		return nil
	}
	if topic == "" {
		return ErrInvalidTopic
	}
	if c.qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes",
			ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, c.qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishJSON marshals v and publishes it to topic.
// On a nil client this is a no-op.
func (c *Client) PublishJSON(topic string, v any, retained bool) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling event payload: %w", err)
	}
	return c.Publish(topic, payload, retained)
}

// Close publishes an offline status and disconnects from the broker.
func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}
	//nolint:errcheck // best effort: broker may already be gone
	c.Publish(TopicSystemStatus, []byte(`{"online":false}`), true)
	c.client.Disconnect(disconnectQuiesceMS)
	c.setConnected(false)
}

// setConnected updates the tracked connection state.
func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// publishOnlineStatus announces the service as online (retained, so new
// subscribers immediately see current availability).
func (c *Client) publishOnlineStatus() {
	//nolint:errcheck // best effort status announcement
	c.Publish(TopicSystemStatus, []byte(`{"online":true}`), true)
}
