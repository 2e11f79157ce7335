package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the payload of the session cookie. The realtime
// admission path and the HTTP middleware decode this exact shape.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}
