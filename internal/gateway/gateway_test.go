package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/chatrelay/internal/models"
)

func newServer(t *testing.T, h *harness) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.served <- h.gw.Serve(conn, 0)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame(t, event, data)))
}

func next(t *testing.T, conn *websocket.Conn) models.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f models.Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestGateway_EndToEnd(t *testing.T) {
	h := newHarness(t, time.Minute)
	srv := newServer(t, h)
	a := dial(t, srv)

	send(t, a, models.EventJoinChannel, 1)
	send(t, a, models.EventSendMessage, models.SendMessageRequest{Content: "hi", ChannelID: 1, UserID: 42})

	got := next(t, a)
	require.Equal(t, models.EventNewMessage, got.Event)
	var view models.MessageWithUser
	require.NoError(t, json.Unmarshal(got.Data, &view))
	assert.Equal(t, int64(1), view.ID)
	assert.Equal(t, "hi", view.Content)
	assert.Equal(t, int64(42), view.UserID)

	send(t, a, models.EventSendMessage, models.SendMessageRequest{Content: "", ChannelID: 1, UserID: 42})
	got = next(t, a)
	assert.Equal(t, models.EventMessageError, got.Event)
	assert.Equal(t, 1, h.store.MessageCount(1))
}

func TestGateway_LeaveThenBroadcast(t *testing.T) {
	h := newHarness(t, time.Minute)
	srv := newServer(t, h)
	a, b := dial(t, srv), dial(t, srv)

	send(t, a, models.EventJoinChannel, 1)
	send(t, a, models.EventLeaveChannel, 1)
	// an error round trip proves the leave was applied
	send(t, a, models.EventSendMessage, models.SendMessageRequest{ChannelID: 1, UserID: 1})
	require.Equal(t, models.EventMessageError, next(t, a).Event)

	send(t, b, models.EventJoinChannel, 1)
	send(t, b, models.EventSendMessage, models.SendMessageRequest{Content: "anyone?", ChannelID: 1, UserID: 2})
	require.Equal(t, models.EventNewMessage, next(t, b).Event)

	send(t, a, models.EventSendMessage, models.SendMessageRequest{ChannelID: 1, UserID: 1})
	assert.Equal(t, models.EventMessageError, next(t, a).Event, "a must not see the message sent after it left")
}

func TestGateway_DisconnectDropsMembership(t *testing.T) {
	h := newHarness(t, time.Minute)
	srv := newServer(t, h)
	a := dial(t, srv)

	send(t, a, models.EventJoinChannel, 1)
	send(t, a, models.EventSendMessage, models.SendMessageRequest{Content: "bye", ChannelID: 1, UserID: 1})
	require.Equal(t, models.EventNewMessage, next(t, a).Event)
	require.Equal(t, 1, h.hub.MemberCount(1))

	require.NoError(t, a.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	a.Close()

	assert.Eventually(t, func() bool {
		return h.hub.MemberCount(1) == 0 && h.hub.ConnectionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_ShutdownClosesConnections(t *testing.T) {
	h := newHarness(t, time.Minute)
	srv := newServer(t, h)
	a := dial(t, srv)

	send(t, a, models.EventJoinChannel, 1)
	send(t, a, models.EventSendMessage, models.SendMessageRequest{Content: "x", ChannelID: 1, UserID: 1})
	require.Equal(t, models.EventNewMessage, next(t, a).Event)

	client := (<-h.served).peer.(*Client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.hub.Shutdown(ctx))

	select {
	case <-client.flushed:
	default:
		t.Fatal("write pump still running after Shutdown returned")
	}

	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := a.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestGateway_ShutdownBoundedByContext(t *testing.T) {
	h := newHarness(t, time.Minute)

	// no write pump runs for this client, so it never finishes flushing
	stuck := newClient(nil, h.gw.opts, h.gw.log)
	h.hub.Register(stuck)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := h.hub.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGateway_RateLimitAnswersSender(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.gw = New(h.gw.Deps, Options{FramesPerSecond: 0.01, FrameBurst: 1})
	srv := newServer(t, h)
	a := dial(t, srv)

	send(t, a, models.EventSendMessage, models.SendMessageRequest{Content: "first", ChannelID: 1, UserID: 1})
	send(t, a, models.EventSendMessage, models.SendMessageRequest{Content: "second", ChannelID: 1, UserID: 1})

	got := next(t, a)
	require.Equal(t, models.EventMessageError, got.Event)
	assert.JSONEq(t, `{"error":"Too many messages"}`, string(got.Data))
	assert.Equal(t, 1, h.store.MessageCount(1))
}
