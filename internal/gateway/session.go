package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/nikhil/chatrelay/internal/hub"
	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

type State int32

const (
	StateConnecting State = iota
	StateActive
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

var errForeignUser = errors.New("user id does not match the connection")

// Session routes the inbound events of one connection.
type Session struct {
	gw     *Gateway
	peer   hub.Peer
	userID int64
	state  atomic.Int32
	log    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates a session in the connecting state.
func (g *Gateway) NewSession(p hub.Peer, userID int64) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	log := g.log.WithConnection(p.ID())
	if userID != 0 {
		log = log.WithUser(userID)
	}
	return &Session{
		gw:     g,
		peer:   p,
		userID: userID,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Activate registers the connection. Only a connecting session can become
// active.
func (s *Session) Activate() bool {
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return false
	}
	s.gw.Hub.Register(s.peer)
	s.log.Info("connection active")
	return true
}

// Disconnect drops the connection from every channel. Only the first call
// has an effect.
func (s *Session) Disconnect() {
	prev := State(s.state.Swap(int32(StateDisconnected)))
	if prev == StateDisconnected {
		return
	}
	s.cancel()
	if prev == StateActive {
		s.gw.Hub.Unregister(s.peer)
	}
	s.log.Info("connection closed")
}

// Handle decodes and routes one inbound frame. Frames received while the
// session is not active are dropped.
func (s *Session) Handle(raw []byte) {
	if s.State() != StateActive {
		s.log.Debug("frame dropped", "state", s.State().String())
		return
	}

	frame, err := models.DecodeFrame(raw)
	if err != nil {
		s.log.Debug("undecodable frame ignored", "error", err)
		return
	}

	switch frame.Event {
	case models.EventJoinChannel:
		s.joinChannel(frame.Data)
	case models.EventLeaveChannel:
		s.leaveChannel(frame.Data)
	case models.EventSendMessage:
		s.sendMessage(frame.Data)
	case models.EventTypingStart:
		s.typing(frame.Data, true)
	case models.EventTypingStop:
		s.typing(frame.Data, false)
	case models.EventUpdateStatus:
		s.updateStatus(frame.Data)
	default:
		s.log.Debug("unknown event ignored", "event", frame.Event)
	}
}

// Throttled handles a frame dropped by the inbound rate limit. Requests that
// expect an answer get an error back; everything else is dropped silently.
func (s *Session) Throttled(raw []byte) {
	frame, err := models.DecodeFrame(raw)
	if err != nil {
		return
	}
	switch frame.Event {
	case models.EventSendMessage:
		s.gw.Hub.SendTo(s.peer, models.MessageError{Error: "Too many messages"})
	case models.EventUpdateStatus:
		s.gw.Hub.SendTo(s.peer, models.StatusError{Error: "Too many requests"})
	}
}

func (s *Session) joinChannel(data json.RawMessage) {
	var channelID int64
	if err := json.Unmarshal(data, &channelID); err != nil {
		s.log.Debug("malformed join-channel ignored", "error", err)
		return
	}
	if _, err := s.gw.Channels.GetChannel(channelID); err != nil {
		s.log.WithChannel(channelID).Debug("join for unknown channel ignored")
		return
	}
	if s.gw.Hub.Join(s.peer, channelID) {
		s.log.WithChannel(channelID).Debug("channel joined")
	}
}

func (s *Session) leaveChannel(data json.RawMessage) {
	var channelID int64
	if err := json.Unmarshal(data, &channelID); err != nil {
		s.log.Debug("malformed leave-channel ignored", "error", err)
		return
	}
	if s.gw.Hub.Leave(s.peer, channelID) {
		s.log.WithChannel(channelID).Debug("channel left")
	}
}

// claim applies the bound identity to a payload user id.
func (s *Session) claim(userID int64) (int64, error) {
	if s.userID == 0 {
		return userID, nil
	}
	if userID != 0 && userID != s.userID {
		return 0, errForeignUser
	}
	return s.userID, nil
}

func (s *Session) sendMessage(data json.RawMessage) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.gw.Hub.SendTo(s.peer, models.MessageError{Error: "Invalid message data"})
		return
	}

	userID, err := s.claim(req.UserID)
	if err != nil {
		s.gw.Hub.SendTo(s.peer, models.MessageError{Error: "Cannot send as another user"})
		return
	}
	req.UserID = userID

	if _, err := s.gw.Messages.Send(s.ctx, req); err != nil {
		s.log.WithChannel(req.ChannelID).Debug("send-message rejected", "error", err)
		s.gw.Hub.SendTo(s.peer, models.MessageError{Error: messageErrorText(err)})
	}
}

func messageErrorText(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return "Invalid message data"
	case errors.Is(err, models.ErrNotFound):
		return "Channel or user not found"
	default:
		return "Failed to send message"
	}
}

func (s *Session) typing(data json.RawMessage, start bool) {
	var req models.TypingRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Username == "" {
		s.log.Debug("malformed typing event ignored")
		return
	}
	if start {
		s.gw.Typing.StartTyping(req.ChannelID, req.Username, s.peer.ID())
	} else {
		s.gw.Typing.StopTyping(req.ChannelID, req.Username, s.peer.ID())
	}
}

func (s *Session) updateStatus(data json.RawMessage) {
	var req models.UpdateStatusRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.gw.Hub.SendTo(s.peer, models.StatusError{Error: "Invalid status"})
		return
	}

	userID, err := s.claim(req.UserID)
	if err != nil {
		s.gw.Hub.SendTo(s.peer, models.StatusError{Error: "Cannot update another user"})
		return
	}

	if _, err := s.gw.Presence.SetStatus(s.ctx, userID, req.Status); err != nil {
		s.log.Debug("update-status rejected", "error", err)
		s.gw.Hub.SendTo(s.peer, models.StatusError{Error: statusErrorText(err)})
	}
}

func statusErrorText(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return "Invalid status"
	case errors.Is(err, models.ErrNotFound):
		return "User not found"
	default:
		return "Failed to update status"
	}
}
