// Package store holds the authoritative in-memory registries of users and
// channels and the append-only message log of every channel.
//
// Each entity kind is an owned table guarded by its own lock; ids are assigned
// inside the same critical section as the insert, so no reader can observe an
// id without its entity. Message logs are locked per channel so appends to
// different channels never contend.
package store

import (
	"sync"
	"time"

	"github.com/nikhil/chatrelay/internal/models"
)

// DefaultHistoryLimit is the page size used when a caller gives no limit.
const DefaultHistoryLimit = 50

type Store struct {
	users    userTable
	channels channelTable
	messages messageTable

	now func() time.Time
}

type Option func(*Store)

// WithClock replaces the wall clock used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		users:    userTable{byID: make(map[int64]*models.User)},
		channels: channelTable{byID: make(map[int64]*models.Channel)},
		messages: messageTable{logs: make(map[int64]*channelLog)},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type userTable struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]*models.User
}

type channelTable struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]*models.Channel
}
