package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/nikhil/chatrelay/internal/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection. It implements hub.Peer.
type Client struct {
	id   string
	conn *websocket.Conn
	out  *outbox
	log  *logger.Logger

	limiter      *rate.Limiter
	maxFrameSize int64

	done      chan struct{}
	closeOnce sync.Once
	// flushed is closed when the write pump has returned and the socket is shut.
	flushed chan struct{}
}

func newClient(conn *websocket.Conn, opts Options, log *logger.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:           id,
		conn:         conn,
		out:          newOutbox(opts.QueueSize),
		log:          log.WithConnection(id),
		limiter:      rate.NewLimiter(rate.Limit(opts.FramesPerSecond), opts.FrameBurst),
		maxFrameSize: opts.MaxFrameBytes,
		done:         make(chan struct{}),
		flushed:      make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Push enqueues a frame for the write pump without blocking.
func (c *Client) Push(frame []byte) (bool, error) {
	return c.out.push(frame)
}

// Close stops the write pump and waits for it to send the close frame and
// shut the socket. Safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	c.shutdown()
	select {
	case <-c.flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.out.close()
		close(c.done)
	})
}

// readPump pumps frames from the WebSocket connection to the session
func (c *Client) readPump(s *Session) {
	defer func() {
		s.Disconnect()
		c.shutdown()
	}()

	c.conn.SetReadLimit(c.maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("connection closed unexpectedly", "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			c.log.Warn("inbound rate limit exceeded, frame dropped")
			s.Throttled(raw)
			continue
		}
		s.Handle(raw)
	}
}

// writePump pumps frames from the outbox to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.flushed)
	}()

	for {
		select {
		case <-c.out.ready:
			for _, frame := range c.out.drain() {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					c.log.Debug("write failed", "error", err)
					c.shutdown()
					return
				}
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
