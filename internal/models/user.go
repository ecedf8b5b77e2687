package models

import "time"

type User struct {
	ID           int32
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
