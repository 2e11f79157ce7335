package realtime

import (
	"github.com/goccy/go-json"

	"github.com/chattu/chattu-backend/models"
)

// Event names the kinds of realtime frames. The set is closed: inbound
// frames with any other name are refused instead of silently ignored.
type Event string

const (
	EventNewMessage      Event = "new-message"
	EventNewMessageAlert Event = "new-message-alert"
	EventStartTyping     Event = "start-typing"
	EventStopTyping      Event = "stop-typing"
	EventNewRequest      Event = "new-request"
	EventAlert           Event = "alert"
	EventRefetchChats    Event = "refetch-chats"
	EventNewAttachment   Event = "new-attachment"

	// EventError is outbound only: a best-effort report back to the
	// connection whose frame was refused.
	EventError Event = "error"
)

// Frame is the wire envelope in both directions.
type Frame struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func EncodeFrame(event Event, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// Inbound payloads.

type NewMessagePayload struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
	Message string   `json:"message"`
}

type TypingPayload struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
}

type NewRequestPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// Outbound payloads.

type NewMessageData struct {
	ChatID  string                 `json:"chatId"`
	Message models.RealtimeMessage `json:"message"`
}

type NewMessageAlertData struct {
	ChatID string `json:"chatId"`
}

type TypingData struct {
	ChatID string `json:"chatId"`
}

type NewRequestData struct {
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
}

// ChatAlertData carries human-readable notices; ChatID is empty for
// notices not tied to one chat.
type ChatAlertData struct {
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message"`
}

type ErrorData struct {
	Message string `json:"message"`
}
