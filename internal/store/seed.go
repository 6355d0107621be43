package store

import (
	"fmt"

	"github.com/nikhil/chatrelay/internal/models"
)

// Seed loads the default channels, users and welcome messages.
func (s *Store) Seed() error {
	channels := []models.CreateChannelRequest{
		{Name: "general", Description: "General discussion"},
		{Name: "random", Description: "Random conversations"},
		{Name: "tech-talk", Description: "Technical discussions"},
	}
	var general models.Channel
	for i, req := range channels {
		c, err := s.CreateChannel(req)
		if err != nil {
			return fmt.Errorf("seed channel %q: %w", req.Name, err)
		}
		if i == 0 {
			general = c
		}
	}

	users := []models.CreateUserRequest{
		{Username: "Alice Smith", Avatar: "AS", Status: string(models.StatusOnline)},
		{Username: "John Doe", Avatar: "JD", Status: string(models.StatusOnline)},
		{Username: "Mike Brown", Avatar: "MB", Status: string(models.StatusAway)},
	}
	created := make([]models.User, 0, len(users))
	for _, req := range users {
		u, err := s.CreateUser(req)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", req.Username, err)
		}
		created = append(created, u)
	}
	alice, john := created[0], created[1]

	for _, m := range []struct {
		userID  int64
		content string
	}{
		{alice.ID, "Hey everyone! How's everyone doing today? 👋"},
		{john.ID, "That sounds awesome! Can't wait to see what you've been working on. Any sneak peeks? 👀"},
		{john.ID, "Also, did anyone see the new design updates? They look incredible! 🎨"},
	} {
		s.CreateMessage(models.SendMessageRequest{
			Content:   m.content,
			ChannelID: general.ID,
			UserID:    m.userID,
		})
	}
	return nil
}
