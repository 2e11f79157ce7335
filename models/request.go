package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RequestPending = "pending"

// Request is a friend request from Sender to Receiver. Accepting or
// rejecting deletes the record, so everything stored is pending.
type Request struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Status    string             `bson:"status" json:"status"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// NotificationView is a pending request with the sender expanded, as
// returned by the notifications endpoint.
type NotificationView struct {
	ID     string        `json:"_id"`
	Sender MessageSender `json:"sender"`
}
