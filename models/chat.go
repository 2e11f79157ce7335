package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Chat struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	GroupChat bool                 `bson:"group_chat" json:"groupChat"`
	Creator   primitive.ObjectID   `bson:"creator,omitempty" json:"creator,omitempty"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

func (c *Chat) HasMember(id primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// MemberIDs returns the member ids in their wire form, the same strings
// the connection registry is keyed by.
func (c *Chat) MemberIDs() []string {
	return HexIDs(c.Members)
}

// ChatPreview is the per-user projection of a chat list entry: direct
// chats borrow the other member's name and avatar.
type ChatPreview struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	GroupChat bool     `json:"groupChat"`
	Avatar    []string `json:"avatar"`
	Members   []string `json:"members"`
}

// GroupPreview lists a group with up to three member avatars.
type GroupPreview struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Avatar []string `json:"avatar"`
}

// ObjectIDsFromHex converts wire-form ids to ObjectIDs, dropping any
// that do not parse.
func ObjectIDsFromHex(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

func HexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
