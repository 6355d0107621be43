package models

import "time"

type Message struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channelId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageWithUser joins a message with its author as seen at read time.
type MessageWithUser struct {
	Message
	User User `json:"user"`
}

type SendMessageRequest struct {
	Content   string `json:"content"`
	ChannelID int64  `json:"channelId"`
	UserID    int64  `json:"userId"`
}
