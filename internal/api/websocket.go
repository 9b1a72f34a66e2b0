package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/havenhome/haven-core/internal/infrastructure/config"
	"github.com/havenhome/haven-core/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// ChannelDeviceStatus carries device status-change events.
	ChannelDeviceStatus = "device.status_changed"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256
)

// WSMessage is the frame exchanged with dashboard clients.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload names the channels a subscribe or unsubscribe
// request applies to.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// Hub fans events out to connected dashboard clients. Subscription
// state lives here, keyed by client, so a single lock covers both
// membership and channel filters. Hub implements device.StatusNotifier,
// letting the device service push status changes straight to the feed.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]map[string]struct{}
}

// WSClient is one WebSocket connection. Outbound frames go through the
// buffered send channel; the writePump goroutine drains it.
type WSClient struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]map[string]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// NotifyDeviceStatus pushes a device status change to subscribed
// clients. Satisfies device.StatusNotifier.
func (h *Hub) NotifyDeviceStatus(deviceID, oldStatus, newStatus string) {
	h.Broadcast(ChannelDeviceStatus, map[string]string{
		"device_id":  deviceID,
		"old_status": oldStatus,
		"new_status": newStatus,
	})
}

// Register adds a client with no subscriptions.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = make(map[string]struct{})
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "user_id", client.userID)
}

// Unregister drops a client. The send channel is closed exactly once,
// by whichever caller actually removes the entry, so a racing shutdown
// cannot double-close it.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, present := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if present {
		close(client.send)
	}
}

// subscribe adds channels to a client's filter set. Unknown clients are
// ignored (already unregistered).
func (h *Hub) subscribe(client *WSClient, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client]
	if !ok {
		return
	}
	for _, ch := range channels {
		set[ch] = struct{}{}
	}
}

// unsubscribe removes channels from a client's filter set.
func (h *Hub) unsubscribe(client *WSClient, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client]
	if !ok {
		return
	}
	for _, ch := range channels {
		delete(set, ch)
	}
}

// Broadcast delivers an event to every client subscribed to channel.
// The frame is marshalled once; delivery is non-blocking, so a slow
// client loses frames rather than stalling the caller.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("marshalling broadcast frame", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client, subs := range h.clients {
		if _, ok := subs[channel]; !ok {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Buffer full, drop the frame for this client.
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket upgrades the request and starts the client's pumps.
// The route sits behind authMiddleware, which accepts the token as a
// query parameter for handshakes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeUnauthorized(w, "authentication required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, wsSendBufferSize),
		userID: caller,
	}
	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump consumes inbound frames until the connection drops, keeping
// the read deadline fresh from pongs and client traffic.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	deadline := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	//nolint:errcheck // deadline errors surface as read errors below
	c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		//nolint:errcheck // deadline errors surface as read errors
		c.conn.SetReadDeadline(time.Now().Add(deadline))
		c.handleFrame(frame)
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with periodic pings.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			//nolint:errcheck // write errors end the pump below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint:errcheck // connection is going away regardless
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // write errors end the pump below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame dispatches one inbound frame.
func (c *WSClient) handleFrame(frame []byte) {
	var msg WSMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.reply(WSMessage{Type: WSTypeError, Payload: map[string]string{"message": "invalid JSON message"}})
		return
	}

	switch msg.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		channels, ok := channelList(msg.Payload)
		if !ok {
			c.reply(WSMessage{Type: WSTypeError, ID: msg.ID, Payload: map[string]string{"message": "invalid payload"}})
			return
		}
		key := "subscribed"
		if msg.Type == WSTypeSubscribe {
			c.hub.subscribe(c, channels)
		} else {
			c.hub.unsubscribe(c, channels)
			key = "unsubscribed"
		}
		c.reply(WSMessage{Type: WSTypeResponse, ID: msg.ID, Payload: map[string]any{key: channels}})
	case WSTypePing:
		c.reply(WSMessage{Type: WSTypePong, ID: msg.ID})
	default:
		c.reply(WSMessage{Type: WSTypeError, ID: msg.ID, Payload: map[string]string{"message": "unknown message type: " + msg.Type}})
	}
}

// channelList extracts the channel names from a subscribe payload.
func channelList(payload any) ([]string, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, false
	}
	return sub.Channels, true
}

// reply queues an outbound frame, dropping it if the client is gone or
// its buffer is full.
func (c *WSClient) reply(msg WSMessage) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	defer func() {
		recover() //nolint:errcheck // send channel may close mid-reply
	}()
	select {
	case c.send <- data:
	default:
	}
}
