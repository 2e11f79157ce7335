package realtime

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/models"
)

const persistTimeout = 5 * time.Second

// processFrame dispatches one inbound frame. Dispatch is a closed
// switch over the event kinds a connection may send; anything else is
// refused with an error frame instead of falling through silently.
func (h *Hub) processFrame(c *Connection, raw []byte) {
	if c.user == nil {
		// Admission fails closed, so this should be unreachable; refuse
		// anyway rather than dereferencing a missing identity.
		c.reply(EventError, ErrorData{Message: "unauthorized"})
		return
	}

	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Debug().Err(err).Str("user", c.UserID()).Msg("malformed frame")
		c.reply(EventError, ErrorData{Message: "malformed frame"})
		return
	}

	switch frame.Event {
	case EventNewMessage:
		var p NewMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.ChatID == "" {
			c.reply(EventError, ErrorData{Message: "invalid new-message payload"})
			return
		}
		h.handleNewMessage(c, p)
	case EventStartTyping, EventStopTyping:
		var p TypingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.ChatID == "" {
			c.reply(EventError, ErrorData{Message: "invalid typing payload"})
			return
		}
		h.handleTyping(c, frame.Event, p)
	case EventNewRequest:
		var p NewRequestPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.ReceiverID == "" {
			c.reply(EventError, ErrorData{Message: "invalid new-request payload"})
			return
		}
		h.handleNewRequest(p)
	default:
		logger.Debug().Str("event", string(frame.Event)).Str("user", c.UserID()).Msg("unhandled event")
		c.reply(EventError, ErrorData{Message: "unknown event: " + string(frame.Event)})
	}
}

// handleNewMessage emits the realtime view of the message to every
// member's live connection and then persists the durable record. The
// two steps are not atomic: a crash in between leaves a message that
// was seen live but is missing from history, which is accepted and
// logged when the persist fails.
func (h *Hub) handleNewMessage(c *Connection, p NewMessagePayload) {
	chatID, err := primitive.ObjectIDFromHex(p.ChatID)
	if err != nil {
		c.reply(EventError, ErrorData{Message: "invalid chat id"})
		return
	}

	view := models.RealtimeMessage{
		ID:   uuid.NewString(), // ephemeral, not the storage id
		Chat: p.ChatID,
		Sender: models.MessageSender{
			ID:     c.user.ID.Hex(),
			Name:   c.user.Name,
			Avatar: c.user.Avatar.URL,
		},
		Content:   p.Message,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	h.Emit(EventNewMessage, p.Members, NewMessageData{ChatID: p.ChatID, Message: view})
	h.Emit(EventNewMessageAlert, p.Members, NewMessageAlertData{ChatID: p.ChatID})

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	msg := models.Message{
		Chat:    chatID,
		Sender:  c.user.ID,
		Content: p.Message,
	}
	if err := h.messages.Create(ctx, &msg); err != nil {
		// The emit already happened; all we can do is record the miss.
		logger.Error().Err(err).Str("chat", p.ChatID).Str("sender", c.UserID()).Msg("persisting message failed after emit")
	}
}

// handleTyping forwards the indicator to every member except the
// connection it came from.
func (h *Hub) handleTyping(c *Connection, event Event, p TypingPayload) {
	h.emitExcept(event, p.Members, c.id, TypingData{ChatID: p.ChatID})
}

// handleNewRequest notifies the receiver if they are connected; an
// offline receiver sees the request on their next notifications fetch.
func (h *Hub) handleNewRequest(p NewRequestPayload) {
	connID, ok := h.registry.Lookup(p.ReceiverID)
	if !ok {
		return
	}
	h.emitTo([]string{connID}, EventNewRequest, NewRequestData{
		SenderID: p.SenderID,
		Message:  "You have a new friend request!",
	})
}
