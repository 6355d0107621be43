package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikhil/chatrelay/internal/models"
)

// CreateUser registers a user. Status defaults to online.
func (s *Store) CreateUser(req models.CreateUserRequest) (models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return models.User{}, fmt.Errorf("%w: username is required", models.ErrInvalidArgument)
	}
	status := models.StatusOnline
	if req.Status != "" {
		parsed, err := models.ParseStatus(req.Status)
		if err != nil {
			return models.User{}, err
		}
		status = parsed
	}

	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	s.users.lastID++
	user := &models.User{
		ID:        s.users.lastID,
		Username:  username,
		Avatar:    req.Avatar,
		Status:    status,
		CreatedAt: s.now(),
	}
	s.users.byID[user.ID] = user
	return *user, nil
}

func (s *Store) GetUser(id int64) (models.User, error) {
	s.users.mu.RLock()
	defer s.users.mu.RUnlock()

	user, ok := s.users.byID[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: user %d", models.ErrNotFound, id)
	}
	return *user, nil
}

func (s *Store) GetUserByUsername(username string) (models.User, error) {
	s.users.mu.RLock()
	defer s.users.mu.RUnlock()

	for _, user := range s.users.byID {
		if user.Username == username {
			return *user, nil
		}
	}
	return models.User{}, fmt.Errorf("%w: user %q", models.ErrNotFound, username)
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers() []models.User {
	s.users.mu.RLock()
	users := make([]models.User, 0, len(s.users.byID))
	for _, user := range s.users.byID {
		users = append(users, *user)
	}
	s.users.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// UpdateUserStatus validates the status before looking the user up, so an
// invalid value is reported as such even for unknown ids.
func (s *Store) UpdateUserStatus(id int64, status string) (models.User, error) {
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return models.User{}, err
	}

	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	user, ok := s.users.byID[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: user %d", models.ErrNotFound, id)
	}
	user.Status = parsed
	return *user, nil
}
