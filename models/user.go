package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Avatar is the stored reference to an uploaded image: the opaque id the
// upload service knows it by, plus the public retrieval URL.
type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Username  string             `bson:"username" json:"username"`
	Bio       string             `bson:"bio" json:"bio"`
	Password  string             `bson:"password" json:"-"`
	Avatar    Avatar             `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserPreview is the public projection returned by search and friend
// listings.
type UserPreview struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar"`
}

func (u *User) Preview() UserPreview {
	return UserPreview{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Username: u.Username,
		Bio:      u.Bio,
		Avatar:   u.Avatar.URL,
	}
}
