// Package presence changes user status and announces it to every connection.
package presence

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

type UserStore interface {
	UpdateUserStatus(id int64, status string) (models.User, error)
}

type Broadcaster interface {
	BroadcastGlobal(ev models.Event)
}

type Registry struct {
	users UserStore
	out   Broadcaster
	log   *logger.Logger

	// mu keeps broadcasts in the order the store applied the updates.
	mu sync.Mutex
}

func New(users UserStore, out Broadcaster, log *logger.Logger) *Registry {
	return &Registry{users: users, out: out, log: log}
}

// SetStatus updates the user's status and broadcasts the new snapshot. On
// error nothing is broadcast.
func (r *Registry) SetStatus(ctx context.Context, userID int64, status string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.users.UpdateUserStatus(userID, status)
	if err != nil {
		return models.User{}, fmt.Errorf("set status: %w", err)
	}

	r.log.WithUser(userID).Info("status changed", "status", user.Status)
	r.out.BroadcastGlobal(models.UserStatusUpdate{User: user})
	return user, nil
}
