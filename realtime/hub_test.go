package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/models"
)

type fakeMessageStore struct {
	mu      sync.Mutex
	created []models.Message
	err     error
}

func (s *fakeMessageStore) Create(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *msg)
	return nil
}

func (s *fakeMessageStore) all() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.created...)
}

func newTestConn(hub *Hub, name string) *Connection {
	user := &models.User{
		ID:     primitive.NewObjectID(),
		Name:   name,
		Avatar: models.Avatar{URL: "http://localhost/uploads/" + name + ".png"},
	}
	c := NewConnection(hub, nil, user)
	hub.register(c)
	return c
}

func recvFrame(t *testing.T, c *Connection) Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("expected a frame, got none")
		return Frame{}
	}
}

func assertNoFrame(t *testing.T, c *Connection) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame: %s", raw)
	default:
	}
}

func inboundFrame(t *testing.T, event Event, payload interface{}) []byte {
	t.Helper()
	raw, err := EncodeFrame(event, payload)
	require.NoError(t, err)
	return raw
}

func TestEmitReachesOnlyConnectedUsers(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})
	alice := newTestConn(hub, "alice")
	bob := newTestConn(hub, "bob")

	hub.Emit(EventAlert, []string{alice.UserID(), bob.UserID(), primitive.NewObjectID().Hex()}, ChatAlertData{Message: "hello"})

	for _, c := range []*Connection{alice, bob} {
		frame := recvFrame(t, c)
		assert.Equal(t, EventAlert, frame.Event)
		assertNoFrame(t, c)
	}
}

func TestNewMessageFanoutAndPersist(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store)
	alice := newTestConn(hub, "alice")
	bob := newTestConn(hub, "bob")
	chatID := primitive.NewObjectID()

	raw := inboundFrame(t, EventNewMessage, NewMessagePayload{
		ChatID:  chatID.Hex(),
		Members: []string{alice.UserID(), bob.UserID(), primitive.NewObjectID().Hex()},
		Message: "hi there",
	})
	hub.processFrame(alice, raw)

	// Every connected member sees the message first, then the alert.
	for _, c := range []*Connection{alice, bob} {
		msgFrame := recvFrame(t, c)
		assert.Equal(t, EventNewMessage, msgFrame.Event)
		alertFrame := recvFrame(t, c)
		assert.Equal(t, EventNewMessageAlert, alertFrame.Event)
		assertNoFrame(t, c)

		var data NewMessageData
		require.NoError(t, json.Unmarshal(msgFrame.Data, &data))
		assert.Equal(t, chatID.Hex(), data.ChatID)
		assert.Equal(t, "hi there", data.Message.Content)
		assert.Equal(t, alice.UserID(), data.Message.Sender.ID)
		assert.Equal(t, "alice", data.Message.Sender.Name)
		assert.NotEmpty(t, data.Message.ID)
		assert.NotEmpty(t, data.Message.CreatedAt)
	}

	created := store.all()
	require.Len(t, created, 1)
	assert.Equal(t, chatID, created[0].Chat)
	assert.Equal(t, "hi there", created[0].Content)
	assert.Equal(t, alice.UserID(), created[0].Sender.Hex())
}

func TestNewMessagePersistFailureStillEmits(t *testing.T) {
	store := &fakeMessageStore{err: assert.AnError}
	hub := NewHub(store)
	alice := newTestConn(hub, "alice")
	bob := newTestConn(hub, "bob")

	raw := inboundFrame(t, EventNewMessage, NewMessagePayload{
		ChatID:  primitive.NewObjectID().Hex(),
		Members: []string{bob.UserID()},
		Message: "lost to history",
	})
	hub.processFrame(alice, raw)

	assert.Equal(t, EventNewMessage, recvFrame(t, bob).Event)
	assert.Equal(t, EventNewMessageAlert, recvFrame(t, bob).Event)
	assertNoFrame(t, alice)
}

func TestTypingExcludesSender(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})
	alice := newTestConn(hub, "alice")
	bob := newTestConn(hub, "bob")
	chatID := primitive.NewObjectID().Hex()

	raw := inboundFrame(t, EventStartTyping, TypingPayload{
		ChatID:  chatID,
		Members: []string{alice.UserID(), bob.UserID()},
	})
	hub.processFrame(alice, raw)

	frame := recvFrame(t, bob)
	assert.Equal(t, EventStartTyping, frame.Event)
	var data TypingData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	assert.Equal(t, chatID, data.ChatID)

	assertNoFrame(t, alice)
}

func TestNewRequestOnlineReceiver(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})
	alice := newTestConn(hub, "alice")
	bob := newTestConn(hub, "bob")

	raw := inboundFrame(t, EventNewRequest, NewRequestPayload{
		SenderID:   alice.UserID(),
		ReceiverID: bob.UserID(),
	})
	hub.processFrame(alice, raw)

	frame := recvFrame(t, bob)
	assert.Equal(t, EventNewRequest, frame.Event)
	var data NewRequestData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	assert.Equal(t, alice.UserID(), data.SenderID)
	assert.Equal(t, "You have a new friend request!", data.Message)
}

func TestNewRequestOfflineReceiverIsDropped(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})
	alice := newTestConn(hub, "alice")

	raw := inboundFrame(t, EventNewRequest, NewRequestPayload{
		SenderID:   alice.UserID(),
		ReceiverID: primitive.NewObjectID().Hex(),
	})
	hub.processFrame(alice, raw)

	assertNoFrame(t, alice)
}

func TestUnknownEventRefused(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})
	alice := newTestConn(hub, "alice")

	hub.processFrame(alice, []byte(`{"event":"bogus","data":{}}`))

	frame := recvFrame(t, alice)
	assert.Equal(t, EventError, frame.Event)
	var data ErrorData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	assert.Contains(t, data.Message, "unknown event")
}

func TestMalformedFrameRefused(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})
	alice := newTestConn(hub, "alice")

	hub.processFrame(alice, []byte(`{not json`))

	frame := recvFrame(t, alice)
	assert.Equal(t, EventError, frame.Event)
}

func TestUnregisterKeepsNewerRegistration(t *testing.T) {
	hub := NewHub(&fakeMessageStore{})

	user := &models.User{ID: primitive.NewObjectID(), Name: "alice"}
	old := NewConnection(hub, nil, user)
	hub.register(old)
	fresh := NewConnection(hub, nil, user)
	hub.register(fresh)

	// The old tab closing must not unmap the user's newer connection.
	hub.unregister(old)
	connID, ok := hub.Registry().Lookup(user.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, fresh.id, connID)

	hub.unregister(fresh)
	_, ok = hub.Registry().Lookup(user.ID.Hex())
	assert.False(t, ok)
}
