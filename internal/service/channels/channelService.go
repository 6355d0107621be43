package channelService

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
	"github.com/nikhil/chatrelay/internal/response"
	"github.com/nikhil/chatrelay/internal/store"
)

// MemberCounter reports how many live connections joined a channel.
type MemberCounter interface {
	MemberCount(channelID int64) int
}

// ChannelService handles channel-related operations
type ChannelService struct {
	Store   *store.Store
	Members MemberCounter
	Log     *logger.Logger
}

// NewChannelService initializes a new channel service
func NewChannelService(st *store.Store, members MemberCounter) *ChannelService {
	return &ChannelService{
		Store:   st,
		Members: members,
		Log:     logger.NewLogger("channel-service"),
	}
}

// WithCounts decorates a channel with its message count and active members.
func (cs *ChannelService) WithCounts(ch models.Channel) models.ChannelWithMessageCount {
	return models.ChannelWithMessageCount{
		Channel:       ch,
		MessageCount:  cs.Store.MessageCount(ch.ID),
		ActiveMembers: cs.Members.MemberCount(ch.ID),
	}
}

// ListChannels returns every channel with its counts
func (cs *ChannelService) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels := cs.Store.ListChannels()
	result := make([]models.ChannelWithMessageCount, 0, len(channels))
	for _, ch := range channels {
		result = append(result, cs.WithCounts(ch))
	}
	response.JSON(w, http.StatusOK, result)
}

// GetChannel retrieves a specific channel by ID
func (cs *ChannelService) GetChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	ch, err := cs.Store.GetChannel(channelID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Channel not found")
			return
		}
		cs.Log.Error("Failed to fetch channel", "channel_id", channelID, "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to fetch channel")
		return
	}
	response.JSON(w, http.StatusOK, cs.WithCounts(ch))
}

// CreateChannel handles the creation of a new channel
func (cs *ChannelService) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid channel data")
		return
	}

	ch, err := cs.Store.CreateChannel(req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidArgument) {
			response.Error(w, http.StatusBadRequest, "Invalid channel data")
			return
		}
		cs.Log.Error("Failed to create channel", "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to create channel")
		return
	}

	cs.Log.Info("Channel created", "channel_id", ch.ID, "name", ch.Name)
	response.JSON(w, http.StatusCreated, ch)
}
