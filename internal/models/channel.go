package models

import "time"

// Channel represents a channel entity
type Channel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChannelWithMessageCount is a channel plus counts derived at read time.
type ChannelWithMessageCount struct {
	Channel
	MessageCount  int `json:"messageCount"`
	ActiveMembers int `json:"activeMembers"`
}

// CreateChannelRequest represents the request body for channel creation
type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
