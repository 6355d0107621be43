// Package hub keeps the channel membership table and fans events out to the
// connections that joined a channel.
//
// Delivery is best effort: a push that fails for one connection is logged and
// counted and never stops delivery to the others.
package hub

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

// Hub maintains the set of active connections and broadcasts events to them.
type Hub struct {
	*Membership

	log *logger.Logger

	delivered atomic.Int64
	failed    atomic.Int64
	evicted   atomic.Int64
}

// Stats are cumulative delivery counters.
type Stats struct {
	Connections int   `json:"connections"`
	Delivered   int64 `json:"delivered"`
	Failed      int64 `json:"failed"`
	Evicted     int64 `json:"evicted"`
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		Membership: NewMembership(),
		log:        log,
	}
}

// Register adds a connection to the global set.
func (h *Hub) Register(p Peer) {
	if h.Add(p) {
		h.log.Debug("connection registered", "conn_id", p.ID())
	}
}

// Unregister removes a connection from every channel and from the global set.
func (h *Hub) Unregister(p Peer) {
	left := h.DropConnection(p)
	h.log.Debug("connection unregistered", "conn_id", p.ID(), "channels_left", left)
}

// Broadcast delivers ev to every member of a channel except the connection
// whose id equals exclude. An empty exclude includes everyone.
func (h *Hub) Broadcast(channelID int64, ev models.Event, exclude string) {
	frame, err := models.EncodeEvent(ev)
	if err != nil {
		h.log.Error("failed to encode broadcast", "event", ev.EventName(), "channel_id", channelID, "error", err)
		return
	}
	for _, p := range h.MembersOf(channelID) {
		if exclude != "" && p.ID() == exclude {
			continue
		}
		h.push(p, frame, ev.EventName())
	}
}

// BroadcastGlobal delivers ev to every registered connection regardless of
// channel membership.
func (h *Hub) BroadcastGlobal(ev models.Event) {
	frame, err := models.EncodeEvent(ev)
	if err != nil {
		h.log.Error("failed to encode global broadcast", "event", ev.EventName(), "error", err)
		return
	}
	for _, p := range h.Connections() {
		h.push(p, frame, ev.EventName())
	}
}

// SendTo delivers ev to a single connection.
func (h *Hub) SendTo(p Peer, ev models.Event) {
	frame, err := models.EncodeEvent(ev)
	if err != nil {
		h.log.Error("failed to encode event", "event", ev.EventName(), "conn_id", p.ID(), "error", err)
		return
	}
	h.push(p, frame, ev.EventName())
}

func (h *Hub) push(p Peer, frame []byte, event string) {
	evicted, err := p.Push(frame)
	if err != nil {
		h.failed.Add(1)
		h.log.Debug("delivery failed", "conn_id", p.ID(), "event", event, "error", err)
		return
	}
	h.delivered.Add(1)
	if evicted {
		h.evicted.Add(1)
		h.log.Warn("outbound queue full, dropped oldest frame", "conn_id", p.ID(), "event", event)
	}
}

func (h *Hub) Stats() Stats {
	return Stats{
		Connections: h.ConnectionCount(),
		Delivered:   h.delivered.Load(),
		Failed:      h.failed.Load(),
		Evicted:     h.evicted.Load(),
	}
}

// Shutdown closes every registered connection concurrently and waits until
// each has flushed its close frame or ctx expires.
func (h *Hub) Shutdown(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	peers := h.Connections()
	for _, p := range peers {
		p := p
		g.Go(func() error {
			return p.Close(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		h.log.Warn("hub shut down before every connection closed", "connections", len(peers), "error", err)
		return err
	}
	h.log.Info("hub shut down", "connections_closed", len(peers))
	return nil
}
