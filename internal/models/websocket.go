package models

import (
	"encoding/json"
	"fmt"
)

// Inbound event names (client -> gateway)
const (
	EventJoinChannel  = "join-channel"
	EventLeaveChannel = "leave-channel"
	EventSendMessage  = "send-message"
	EventTypingStart  = "typing-start"
	EventTypingStop   = "typing-stop"
	EventUpdateStatus = "update-status"
)

// Outbound event names (gateway -> client)
const (
	EventNewMessage       = "new-message"
	EventUserTyping       = "user-typing"
	EventUserStatusUpdate = "user-status-update"
	EventMessageError     = "message-error"
	EventStatusError      = "status-error"
)

// Frame represents the structure of WebSocket messages in both directions
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TypingRequest is the payload of typing-start and typing-stop.
type TypingRequest struct {
	ChannelID int64  `json:"channelId"`
	Username  string `json:"username"`
}

// UpdateStatusRequest is the payload of update-status.
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// Event is one outbound event variant.
type Event interface {
	EventName() string
}

type NewMessage struct {
	MessageWithUser
}

type UserTyping struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type UserStatusUpdate struct {
	User
}

type MessageError struct {
	Error string `json:"error"`
}

type StatusError struct {
	Error string `json:"error"`
}

func (NewMessage) EventName() string       { return EventNewMessage }
func (UserTyping) EventName() string       { return EventUserTyping }
func (UserStatusUpdate) EventName() string { return EventUserStatusUpdate }
func (MessageError) EventName() string     { return EventMessageError }
func (StatusError) EventName() string      { return EventStatusError }

// EncodeEvent wraps an event into a frame and marshals it.
func EncodeEvent(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventName(), err)
	}
	b, err := json.Marshal(Frame{Event: ev.EventName(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s frame: %w", ev.EventName(), err)
	}
	return b, nil
}

// DecodeFrame parses one inbound frame.
func DecodeFrame(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: invalid frame: %v", ErrInvalidArgument, err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: frame has no event", ErrInvalidArgument)
	}
	return f, nil
}
