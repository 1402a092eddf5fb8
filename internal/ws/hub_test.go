package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thriftit/backend/internal/models"
	"thriftit/backend/internal/repository"
	"thriftit/backend/internal/service"
)

type fakeSender struct {
	sent []models.Message
	err  error
}

func (f *fakeSender) Send(senderID, receiverID uint, content string) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	msg := models.Message{
		ID:         uint(len(f.sent) + 1),
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	f.sent = append(f.sent, msg)
	return &msg, nil
}

type fakeDirectory struct {
	users map[uint]*models.User
}

func (f *fakeDirectory) GetUserByID(id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, service.ErrUserNotFound
}

func newTestHub() (*Hub, *fakeSender, *fakeDirectory) {
	sender := &fakeSender{}
	directory := &fakeDirectory{users: map[uint]*models.User{
		1: {ID: 1, StudentID: "alice01", FullName: "Alice"},
		2: {ID: 2, StudentID: "bob02"},
	}}
	return NewHub(sender, directory, nil, Tuning{}), sender, directory
}

func newTestClient(hub *Hub) *Client {
	return &Client{
		ID:     "test-client",
		hub:    hub,
		send:   make(chan []byte, 8),
		topics: make(map[Topic]bool),
	}
}

func recvEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("no event queued")
		return Envelope{}
	}
}

func requireEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event queued: %s", raw)
	default:
	}
}

func TestHubTuning(t *testing.T) {
	hub, _, _ := newTestHub()
	assert.Equal(t, 10*time.Second, hub.tuning.WriteWait)
	assert.Equal(t, 60*time.Second, hub.tuning.PongWait)
	assert.Equal(t, int64(64<<10), hub.tuning.MaxFrameSize)
	assert.Equal(t, 256, hub.tuning.SendBufferSize)

	custom := Tuning{
		WriteWait:      2 * time.Second,
		PongWait:       20 * time.Second,
		MaxFrameSize:   4096,
		SendBufferSize: 8,
	}
	hub = NewHub(&fakeSender{}, &fakeDirectory{}, nil, custom)
	assert.Equal(t, custom, hub.tuning)
	assert.Equal(t, 18*time.Second, hub.tuning.pingPeriod())
}

func TestUserTopicIdentity(t *testing.T) {
	assert.Equal(t, UserTopic(7), UserTopic(7))
	assert.NotEqual(t, UserTopic(7), UserTopic(8))
	assert.Equal(t, "user_7", UserTopic(7).String())
	assert.Equal(t, uint(7), UserTopic(7).UserID())
}

func TestSubscribeIsIdempotent(t *testing.T) {
	hub, _, _ := newTestHub()
	client := newTestClient(hub)
	topic := UserTopic(1)

	hub.Subscribe(client, topic)
	hub.Subscribe(client, topic)
	assert.Equal(t, 1, hub.Subscribers(topic))

	hub.Publish(topic, "new_message", map[string]any{"content": "hi"})

	env := recvEnvelope(t, client)
	assert.Equal(t, "new_message", env.Event)
	// A duplicate join must not produce a duplicate delivery
	requireEmpty(t, client)
}

func TestPublishReachesOnlySubscribers(t *testing.T) {
	hub, _, _ := newTestHub()
	joined := newTestClient(hub)
	other := newTestClient(hub)

	hub.Subscribe(joined, UserTopic(1))
	hub.Subscribe(other, UserTopic(2))

	hub.Publish(UserTopic(1), "new_message", nil)

	assert.Equal(t, "new_message", recvEnvelope(t, joined).Event)
	requireEmpty(t, other)
}

func TestHandleJoin(t *testing.T) {
	hub, _, _ := newTestHub()
	client := newTestClient(hub)

	client.handleJoin(json.RawMessage(`{"user_id": 1}`))
	env := recvEnvelope(t, client)
	assert.Equal(t, "joined", env.Event)
	assert.Equal(t, 1, hub.Subscribers(UserTopic(1)))

	// Unknown users cannot be joined
	client.handleJoin(json.RawMessage(`{"user_id": 42}`))
	env = recvEnvelope(t, client)
	assert.Equal(t, "error", env.Event)
	assert.Equal(t, 0, hub.Subscribers(UserTopic(42)))

	// Missing user_id is rejected
	client.handleJoin(json.RawMessage(`{}`))
	env = recvEnvelope(t, client)
	assert.Equal(t, "error", env.Event)
}

func TestHandleSendMessageFansOut(t *testing.T) {
	hub, sender, _ := newTestHub()
	alice := newTestClient(hub)
	bob := newTestClient(hub)
	hub.Subscribe(alice, UserTopic(1))
	hub.Subscribe(bob, UserTopic(2))

	alice.handleSendMessage(json.RawMessage(`{"sender_id": 1, "receiver_id": 2, "content": "hello bob"}`))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hello bob", sender.sent[0].Content)

	// Receiver gets new_message with the sender's display name
	env := recvEnvelope(t, bob)
	assert.Equal(t, "new_message", env.Event)
	data := env.Data.(map[string]any)
	assert.Equal(t, "hello bob", data["content"])
	assert.Equal(t, "Alice", data["sender_name"])

	// Sender gets the message_sent acknowledgement
	env = recvEnvelope(t, alice)
	assert.Equal(t, "message_sent", env.Event)
	data = env.Data.(map[string]any)
	assert.Equal(t, "hello bob", data["content"])
	assert.Equal(t, float64(2), data["receiver_id"])
}

func TestHandleSendMessageFailureGoesToOriginatorOnly(t *testing.T) {
	hub, sender, _ := newTestHub()
	alice := newTestClient(hub)
	bob := newTestClient(hub)
	hub.Subscribe(alice, UserTopic(1))
	hub.Subscribe(bob, UserTopic(2))

	sender.err = repository.ErrEmptyContent
	alice.handleSendMessage(json.RawMessage(`{"sender_id": 1, "receiver_id": 2, "content": ""}`))

	env := recvEnvelope(t, alice)
	assert.Equal(t, "error", env.Event)
	requireEmpty(t, bob)
	assert.Empty(t, sender.sent)
}

func TestDroppedClientLeavesTopics(t *testing.T) {
	hub, _, _ := newTestHub()
	client := &Client{
		ID:     "slow",
		hub:    hub,
		send:   make(chan []byte), // unbuffered, always full
		topics: make(map[Topic]bool),
	}
	hub.Subscribe(client, UserTopic(1))
	require.Equal(t, 1, hub.Subscribers(UserTopic(1)))

	hub.Publish(UserTopic(1), "new_message", nil)
	assert.Equal(t, 0, hub.Subscribers(UserTopic(1)))
}

func TestDroppedClientSurvivesLateWrites(t *testing.T) {
	hub, _, _ := newTestHub()
	client := &Client{
		ID:     "slow",
		hub:    hub,
		send:   make(chan []byte, 1),
		topics: make(map[Topic]bool),
	}
	hub.Subscribe(client, UserTopic(1))

	// First publish fills the one-slot buffer, the second drops the client
	hub.Publish(UserTopic(1), "new_message", nil)
	hub.Publish(UserTopic(1), "new_message", nil)
	require.Equal(t, 0, hub.Subscribers(UserTopic(1)))
	require.True(t, client.isClosed())

	// The read pump may still be dispatching a frame for this client.
	// These must be no-ops, not a send on a closed channel.
	assert.NotPanics(t, func() {
		client.handleJoin(json.RawMessage(`{"user_id": 1}`))
		client.sendError("too late")
	})
	assert.False(t, client.enqueue([]byte(`{}`)))
	assert.Equal(t, 0, hub.Subscribers(UserTopic(1)))

	// closeSend is idempotent even when racing the unregister path
	assert.NotPanics(t, func() { client.closeSend() })
}

func TestSendErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{repository.ErrEmptyContent, "message content cannot be empty"},
		{repository.ErrContentTooLong, "message content is too long"},
		{repository.ErrSelfMessage, "cannot send a message to yourself"},
		{service.ErrSenderNotFound, "sender not found"},
		{service.ErrReceiverNotFound, "receiver not found"},
		{errors.New("pq: connection refused"), "failed to send message"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sendErrorText(tt.err))
	}
}
