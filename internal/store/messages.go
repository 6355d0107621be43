package store

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/nikhil/chatrelay/internal/models"
)

type messageTable struct {
	lastID atomic.Int64

	// mu guards the logs map only; each log has its own lock.
	mu   sync.RWMutex
	logs map[int64]*channelLog

	// message id -> channel id
	index sync.Map
}

type channelLog struct {
	mu       sync.RWMutex
	messages []models.Message
}

func (m *messageTable) log(channelID int64, create bool) *channelLog {
	m.mu.RLock()
	l, ok := m.logs[channelID]
	m.mu.RUnlock()
	if ok || !create {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok = m.logs[channelID]; !ok {
		l = &channelLog{}
		m.logs[channelID] = l
	}
	return l
}

// CreateMessage appends a message to its channel log. Channel and user
// references are not enforced here; reads surface dangling authors as
// ErrNotFound.
func (s *Store) CreateMessage(req models.SendMessageRequest) models.Message {
	l := s.messages.log(req.ChannelID, true)

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := models.Message{
		ID:        s.messages.lastID.Add(1),
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	l.messages = append(l.messages, msg)
	s.messages.index.Store(msg.ID, msg.ChannelID)
	return msg
}

func (s *Store) GetMessage(id int64) (models.Message, error) {
	v, ok := s.messages.index.Load(id)
	if !ok {
		return models.Message{}, fmt.Errorf("%w: message %d", models.ErrNotFound, id)
	}
	l := s.messages.log(v.(int64), false)
	if l == nil {
		return models.Message{}, fmt.Errorf("%w: message %d", models.ErrNotFound, id)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if i, found := findMessage(l.messages, id); found {
		return l.messages[i], nil
	}
	return models.Message{}, fmt.Errorf("%w: message %d", models.ErrNotFound, id)
}

// GetMessageWithUser returns the joined view of one message.
func (s *Store) GetMessageWithUser(id int64) (models.MessageWithUser, error) {
	msg, err := s.GetMessage(id)
	if err != nil {
		return models.MessageWithUser{}, err
	}
	return s.withUser(msg)
}

// GetMessagesByChannel returns the most recent limit messages of a channel in
// chronological order, ties broken by id. A limit <= 0 means
// DefaultHistoryLimit.
func (s *Store) GetMessagesByChannel(channelID int64, limit int) ([]models.MessageWithUser, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var msgs []models.Message
	if l := s.messages.log(channelID, false); l != nil {
		l.mu.RLock()
		msgs = make([]models.Message, len(l.messages))
		copy(msgs, l.messages)
		l.mu.RUnlock()
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	result := make([]models.MessageWithUser, 0, len(msgs))
	for _, msg := range msgs {
		view, err := s.withUser(msg)
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

// MessageCount reports how many messages a channel log currently holds.
func (s *Store) MessageCount(channelID int64) int {
	l := s.messages.log(channelID, false)
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// DeleteMessage removes a message from its log. The id is never reused.
func (s *Store) DeleteMessage(id int64) bool {
	v, ok := s.messages.index.LoadAndDelete(id)
	if !ok {
		return false
	}
	l := s.messages.log(v.(int64), false)
	if l == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	i, found := findMessage(l.messages, id)
	if !found {
		return false
	}
	l.messages = append(l.messages[:i], l.messages[i+1:]...)
	return true
}

func (s *Store) withUser(msg models.Message) (models.MessageWithUser, error) {
	user, err := s.GetUser(msg.UserID)
	if err != nil {
		return models.MessageWithUser{}, fmt.Errorf("author of message %d: %w", msg.ID, err)
	}
	return models.MessageWithUser{Message: msg, User: user}, nil
}

// findMessage relies on ids being ascending within a log, which holds because
// ids are assigned under the log lock.
func findMessage(msgs []models.Message, id int64) (int, bool) {
	i := sort.Search(len(msgs), func(i int) bool { return msgs[i].ID >= id })
	return i, i < len(msgs) && msgs[i].ID == id
}
