package ws

import (
	"encoding/json"
	"sync"

	"thriftit/backend/internal/models"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/metrics"
)

// MessageSender persists an outbound chat message. Satisfied by
// service.MessageService.
type MessageSender interface {
	Send(senderID, receiverID uint, content string) (*models.Message, error)
}

// UserDirectory resolves users for join validation and sender names.
// Satisfied by service.UserService.
type UserDirectory interface {
	GetUserByID(id uint) (*models.User, error)
}

// Hub tracks connected clients and their topic subscriptions and fans
// events out to them.
type Hub struct {
	clients map[*Client]bool
	subs    map[Topic]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	messages MessageSender
	users    UserDirectory
	presence *Presence
	tuning   Tuning

	mu sync.Mutex
}

func NewHub(messages MessageSender, users UserDirectory, presence *Presence, tuning Tuning) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		subs:       make(map[Topic]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		messages:   messages,
		users:      users,
		presence:   presence,
		tuning:     tuning.withDefaults(),
	}
}

// Run processes client lifecycle events. Must be started once, before the
// first connection is accepted.
func (h *Hub) Run() {
	log := logger.GetGlobal()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WSConnections.Inc()
			log.Debug("client connected", "client_id", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.dropSubscriptionsLocked(client)
				client.closeSend()
				metrics.WSConnections.Dec()
				log.Debug("client disconnected", "client_id", client.ID)
			}
			h.mu.Unlock()
		}
	}
}

// Subscribe adds the client to a topic's subscriber set. Subscribing twice
// to the same topic is a no-op, so a client never receives an event more
// than once per publish.
func (h *Hub) Subscribe(client *Client, topic Topic) {
	if client.isClosed() {
		return
	}
	h.mu.Lock()
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*Client]bool)
		h.subs[topic] = set
	}
	already := set[client]
	set[client] = true
	client.topics[topic] = true
	h.mu.Unlock()

	if !already {
		h.presence.MarkOnline(topic.UserID())
	}
}

// Publish marshals an event envelope and delivers it to every subscriber of
// the topic. Clients whose send buffer is full are dropped rather than
// allowed to stall the hub.
func (h *Hub) Publish(topic Topic, event string, data interface{}) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		logger.GetGlobal().LogError(err, "failed to marshal event", "event", event, "topic", topic.String())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.subs[topic] {
		if !client.enqueue(payload) {
			delete(h.clients, client)
			h.dropSubscriptionsLocked(client)
			client.closeSend()
			metrics.WSConnections.Dec()
			logger.GetGlobal().Warn("client dropped, send buffer full", "client_id", client.ID, "topic", topic.String())
		}
	}
}

// Subscribers reports how many clients are subscribed to a topic.
func (h *Hub) Subscribers(topic Topic) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

// dropSubscriptionsLocked removes the client from every topic it joined.
// Caller holds h.mu.
func (h *Hub) dropSubscriptionsLocked(client *Client) {
	for topic := range client.topics {
		set := h.subs[topic]
		delete(set, client)
		if len(set) == 0 {
			delete(h.subs, topic)
			go h.presence.MarkOffline(topic.UserID())
		}
	}
	client.topics = make(map[Topic]bool)
}
