package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikhil/chatrelay/internal/models"
)

func (s *Store) CreateChannel(req models.CreateChannelRequest) (models.Channel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Channel{}, fmt.Errorf("%w: channel name is required", models.ErrInvalidArgument)
	}
	var description *string
	if d := strings.TrimSpace(req.Description); d != "" {
		description = &d
	}

	s.channels.mu.Lock()
	defer s.channels.mu.Unlock()

	s.channels.lastID++
	channel := &models.Channel{
		ID:          s.channels.lastID,
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	s.channels.byID[channel.ID] = channel
	return *channel, nil
}

func (s *Store) GetChannel(id int64) (models.Channel, error) {
	s.channels.mu.RLock()
	defer s.channels.mu.RUnlock()

	channel, ok := s.channels.byID[id]
	if !ok {
		return models.Channel{}, fmt.Errorf("%w: channel %d", models.ErrNotFound, id)
	}
	return *channel, nil
}

func (s *Store) GetChannelByName(name string) (models.Channel, error) {
	s.channels.mu.RLock()
	defer s.channels.mu.RUnlock()

	for _, channel := range s.channels.byID {
		if channel.Name == name {
			return *channel, nil
		}
	}
	return models.Channel{}, fmt.Errorf("%w: channel %q", models.ErrNotFound, name)
}

// ListChannels returns every channel ordered by id.
func (s *Store) ListChannels() []models.Channel {
	s.channels.mu.RLock()
	channels := make([]models.Channel, 0, len(s.channels.byID))
	for _, channel := range s.channels.byID {
		channels = append(channels, *channel)
	}
	s.channels.mu.RUnlock()

	sort.Slice(channels, func(i, j int) bool { return channels[i].ID < channels[j].ID })
	return channels
}
