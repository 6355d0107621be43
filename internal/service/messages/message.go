package messageService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/middleware"
	"github.com/nikhil/chatrelay/internal/models"
	"github.com/nikhil/chatrelay/internal/response"
	"github.com/nikhil/chatrelay/internal/store"
)

const DefaultMaxLength = 2000

// Broadcaster fans an event out to the members of a channel.
type Broadcaster interface {
	Broadcast(channelID int64, ev models.Event, exclude string)
}

type MessageService struct {
	Store *store.Store
	Hub   Broadcaster
	Log   *logger.Logger

	maxLength    int
	historyLimit int

	// channel id -> *sync.Mutex held across append and broadcast
	sequencers sync.Map
}

func NewMessageService(st *store.Store, hub Broadcaster, maxLength, historyLimit int) *MessageService {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if historyLimit <= 0 {
		historyLimit = store.DefaultHistoryLimit
	}
	return &MessageService{
		Store:        st,
		Hub:          hub,
		Log:          logger.NewLogger("message-service"),
		maxLength:    maxLength,
		historyLimit: historyLimit,
	}
}

func (ms *MessageService) sequencer(channelID int64) *sync.Mutex {
	v, _ := ms.sequencers.LoadOrStore(channelID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Send validates and appends a message, then broadcasts the joined view to
// every member of the channel, sender included. Appends and broadcasts for one
// channel happen in the same order.
func (ms *MessageService) Send(ctx context.Context, req models.SendMessageRequest) (models.MessageWithUser, error) {
	if err := ctx.Err(); err != nil {
		return models.MessageWithUser{}, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return models.MessageWithUser{}, fmt.Errorf("%w: content is required", models.ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(content); n > ms.maxLength {
		return models.MessageWithUser{}, fmt.Errorf("%w: content is %d characters, limit is %d", models.ErrInvalidArgument, n, ms.maxLength)
	}
	if _, err := ms.Store.GetChannel(req.ChannelID); err != nil {
		return models.MessageWithUser{}, err
	}
	if _, err := ms.Store.GetUser(req.UserID); err != nil {
		return models.MessageWithUser{}, err
	}

	seq := ms.sequencer(req.ChannelID)
	seq.Lock()
	defer seq.Unlock()

	msg := ms.Store.CreateMessage(req)
	view, err := ms.Store.GetMessageWithUser(msg.ID)
	if err != nil {
		return models.MessageWithUser{}, fmt.Errorf("load message %d: %w", msg.ID, err)
	}

	ms.Log.WithChannel(msg.ChannelID).WithFields(map[string]interface{}{
		"message_id": msg.ID,
		"user_id":    msg.UserID,
	}).Debug("message stored")
	ms.Hub.Broadcast(req.ChannelID, models.NewMessage{MessageWithUser: view}, "")
	return view, nil
}

// ListMessages serves GET /api/channels/{id}/messages?limit=N.
func (ms *MessageService) ListMessages(w http.ResponseWriter, r *http.Request) {
	channelID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	limit := ms.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			response.Error(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	messages, err := ms.Store.GetMessagesByChannel(channelID, limit)
	if err != nil {
		ms.Log.Error("Failed to fetch messages", "channel_id", channelID, "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	response.JSON(w, http.StatusOK, messages)
}

// SendMessage serves POST /api/messages through the same path as the
// WebSocket send-message event.
func (ms *MessageService) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid message data")
		return
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		if req.UserID != 0 && req.UserID != userID {
			response.Error(w, http.StatusForbidden, "Cannot send as another user")
			return
		}
		req.UserID = userID
	}

	view, err := ms.Send(r.Context(), req)
	if err != nil {
		code := response.StatusFor(err)
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			response.Error(w, code, "Invalid message data")
		case errors.Is(err, models.ErrNotFound):
			response.Error(w, code, "Channel or user not found")
		default:
			ms.Log.Error("Failed to send message", "error", err)
			response.Error(w, code, "Failed to send message")
		}
		return
	}
	response.JSON(w, http.StatusCreated, view)
}

// DeleteMessage serves DELETE /api/messages/{id}. Deletion is not broadcast.
func (ms *MessageService) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid message ID")
		return
	}
	if !ms.Store.DeleteMessage(messageID) {
		response.Error(w, http.StatusNotFound, "Message not found")
		return
	}
	ms.Log.Info("Message deleted", "message_id", messageID)
	w.WriteHeader(http.StatusNoContent)
}
