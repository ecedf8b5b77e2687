package models

import "time"

type SessionClaims struct {
	UserID    int32     `json:"user_id"`
	ExpiresAt time.Time `json:"exp"`
}
