package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"thriftit/backend/internal/repository"
	"thriftit/backend/internal/service"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/metrics"
)

// Tuning controls connection timing and buffer sizes. The zero value is
// replaced with the defaults below, so tests and callers without special
// needs can pass Tuning{}.
type Tuning struct {
	// WriteWait is the time allowed to write a message to the peer
	WriteWait time.Duration
	// PongWait is the time allowed to read the next pong from the peer
	PongWait time.Duration
	// MaxFrameSize is the maximum frame size accepted from the peer
	MaxFrameSize int64
	// SendBufferSize is the outbound buffer per client
	SendBufferSize int
}

func (t Tuning) withDefaults() Tuning {
	if t.WriteWait <= 0 {
		t.WriteWait = 10 * time.Second
	}
	if t.PongWait <= 0 {
		t.PongWait = 60 * time.Second
	}
	if t.MaxFrameSize <= 0 {
		t.MaxFrameSize = 64 * 1024 // 64KB
	}
	if t.SendBufferSize <= 0 {
		t.SendBufferSize = 256
	}
	return t
}

// pingPeriod is how often pings go out. Must be less than PongWait.
func (t Tuning) pingPeriod() time.Duration {
	return t.PongWait * 9 / 10
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin checking is handled by the CORS middleware
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Envelope is the wire format for every event in both directions.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// inboundEnvelope defers data decoding until the event is known.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	UserID uint `json:"user_id"`
}

type sendMessagePayload struct {
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
}

// Client is one websocket connection. A client may join any number of
// topics over its lifetime; the hub fans events out per topic.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// topics this client has joined, owned by the hub's mutex
	topics map[Topic]bool

	// mu guards closed. Only closeSend may close the send channel, and
	// only once; enqueue refuses writes after that point so no goroutine
	// ever sends on a closed channel.
	mu     sync.Mutex
	closed bool
}

// enqueue queues a payload for the write pump. Returns false when the
// client is closed or its buffer is full.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	tuning := c.hub.tuning
	c.conn.SetReadLimit(tuning.MaxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(tuning.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(tuning.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.GetGlobal().Debug("websocket read error", "client_id", c.ID, "error", err.Error())
			}
			break
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendError("invalid message format")
			continue
		}

		c.handleEvent(env)
	}
}

func (c *Client) WritePump() {
	tuning := c.hub.tuning
	ticker := time.NewTicker(tuning.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(tuning.WriteWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain any queued messages, one frame each
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(tuning.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(env inboundEnvelope) {
	switch env.Event {
	case "join":
		c.handleJoin(env.Data)
	case "send_message":
		c.handleSendMessage(env.Data)
	case "ping":
		c.sendEvent("pong", nil)
	default:
		c.sendError("unknown event: " + env.Event)
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == 0 {
		c.sendError("join requires a user_id")
		return
	}

	if _, err := c.hub.users.GetUserByID(payload.UserID); err != nil {
		c.sendError("unknown user")
		return
	}

	topic := UserTopic(payload.UserID)
	c.hub.Subscribe(c, topic)
	c.sendEvent("joined", gin.H{"user_id": payload.UserID})
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("invalid send_message payload")
		return
	}

	message, err := c.hub.messages.Send(payload.SenderID, payload.ReceiverID, payload.Content)
	if err != nil {
		metrics.MessageSendFailures.WithLabelValues(failureReason(err)).Inc()
		c.sendError(sendErrorText(err))
		return
	}
	metrics.MessagesSent.Inc()

	senderName := ""
	if sender, err := c.hub.users.GetUserByID(message.SenderID); err == nil {
		senderName = sender.DisplayName()
	}

	c.hub.Publish(UserTopic(message.ReceiverID), "new_message", gin.H{
		"id":          message.ID,
		"content":     message.Content,
		"sender_id":   message.SenderID,
		"receiver_id": message.ReceiverID,
		"timestamp":   message.WireTimestamp(),
		"sender_name": senderName,
	})

	c.hub.Publish(UserTopic(message.SenderID), "message_sent", gin.H{
		"id":          message.ID,
		"content":     message.Content,
		"receiver_id": message.ReceiverID,
		"timestamp":   message.WireTimestamp(),
	})
}

func (c *Client) sendEvent(event string, data interface{}) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	c.enqueue(payload)
}

func (c *Client) sendError(text string) {
	c.sendEvent("error", gin.H{"message": text})
}

// failureReason buckets a send failure for the metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrEmptyContent),
		errors.Is(err, repository.ErrContentTooLong),
		errors.Is(err, repository.ErrSelfMessage):
		return "validation"
	case errors.Is(err, service.ErrSenderNotFound),
		errors.Is(err, service.ErrReceiverNotFound):
		return "unknown_user"
	default:
		return "persistence"
	}
}

// sendErrorText maps service errors to the client-facing error message.
// Internal failures are not echoed to the peer.
func sendErrorText(err error) string {
	switch {
	case errors.Is(err, repository.ErrEmptyContent):
		return "message content cannot be empty"
	case errors.Is(err, repository.ErrContentTooLong):
		return "message content is too long"
	case errors.Is(err, repository.ErrSelfMessage):
		return "cannot send a message to yourself"
	case errors.Is(err, service.ErrSenderNotFound):
		return "sender not found"
	case errors.Is(err, service.ErrReceiverNotFound):
		return "receiver not found"
	default:
		return "failed to send message"
	}
}

// ServeWS upgrades the HTTP request and starts the client pumps.
func ServeWS(hub *Hub, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetGlobal().LogError(err, "failed to upgrade websocket connection")
		return
	}

	conn.EnableWriteCompression(true)

	client := &Client{
		ID:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.tuning.SendBufferSize),
		topics: make(map[Topic]bool),
	}

	hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}
