package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is the durable record written to storage. The sender is kept
// as a bare user id; the expanded profile only exists on the realtime
// view.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Chat        primitive.ObjectID `bson:"chat" json:"chat"`
	Sender      primitive.ObjectID `bson:"sender" json:"sender"`
	Content     string             `bson:"content" json:"content"`
	Attachments []Avatar           `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

type MessageSender struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// RealtimeMessage is the richer form emitted to live connections. Its
// id is generated per emit and is NOT the storage id.
type RealtimeMessage struct {
	ID          string        `json:"_id"`
	Chat        string        `json:"chat"`
	Sender      MessageSender `json:"sender"`
	Content     string        `json:"content"`
	Attachments []Avatar      `json:"attachments,omitempty"`
	CreatedAt   string        `json:"createdAt"`
}

// HistoryMessage is a stored message with the sender expanded for the
// paginated history endpoint.
type HistoryMessage struct {
	ID          string        `json:"_id"`
	Chat        string        `json:"chat"`
	Sender      MessageSender `json:"sender"`
	Content     string        `json:"content"`
	Attachments []Avatar      `json:"attachments,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}
