// Package gateway terminates WebSocket connections, decodes inbound events
// and routes them to membership, messages, typing and presence.
package gateway

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/nikhil/chatrelay/internal/hub"
	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

const (
	DefaultQueueSize     = 256
	DefaultMaxFrameBytes = 16 << 10
)

type ChannelLookup interface {
	GetChannel(id int64) (models.Channel, error)
}

type MessageSender interface {
	Send(ctx context.Context, req models.SendMessageRequest) (models.MessageWithUser, error)
}

type TypingTracker interface {
	StartTyping(channelID int64, username, origin string)
	StopTyping(channelID int64, username, origin string)
}

type StatusSetter interface {
	SetStatus(ctx context.Context, userID int64, status string) (models.User, error)
}

// Deps are the collaborators every session routes to.
type Deps struct {
	Hub      *hub.Hub
	Channels ChannelLookup
	Messages MessageSender
	Typing   TypingTracker
	Presence StatusSetter
}

type Options struct {
	QueueSize       int
	MaxFrameBytes   int64
	FramesPerSecond float64
	FrameBurst      int
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if o.FramesPerSecond <= 0 {
		o.FramesPerSecond = 40
	}
	if o.FrameBurst <= 0 {
		o.FrameBurst = 80
	}
	return o
}

type Gateway struct {
	Deps
	opts Options
	log  *logger.Logger
}

func New(deps Deps, opts Options) *Gateway {
	return &Gateway{
		Deps: deps,
		opts: opts.withDefaults(),
		log:  logger.NewLogger("gateway"),
	}
}

// Serve takes over an upgraded connection. userID is the identity bound at
// the handshake, or 0 when connections are unauthenticated. It returns once
// the pumps are started.
func (g *Gateway) Serve(conn *websocket.Conn, userID int64) *Session {
	c := newClient(conn, g.opts, g.log)
	s := g.NewSession(c, userID)
	s.Activate()

	go c.writePump()
	go c.readPump(s)
	return s
}
