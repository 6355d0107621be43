package models

import "errors"

var (
	// ErrInvalidArgument marks malformed payloads, unknown status values and empty content.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks references to unknown users, channels or messages.
	ErrNotFound = errors.New("not found")
	// ErrDeliveryFailed marks a push to a connection that is already closing.
	ErrDeliveryFailed = errors.New("delivery failed")
)
