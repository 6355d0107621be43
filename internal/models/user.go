package models

import (
	"fmt"
	"time"
)

// Status is a user's global presence.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusOnline, StatusAway, StatusOffline:
		return s, nil
	default:
		return "", fmt.Errorf("%w: invalid status %q", ErrInvalidArgument, raw)
	}
}

// User represents a registered chat user
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequest represents the request body for user creation
type CreateUserRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status,omitempty"`
}
