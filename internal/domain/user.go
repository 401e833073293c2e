package domain

import "time"

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	OTPCode      string
	OTPExpiresAt *time.Time
	ResetToken   string
	Preferences  map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
