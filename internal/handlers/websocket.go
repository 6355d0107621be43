package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikhil/chatrelay/internal/gateway"
	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/middleware"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	gateway  *gateway.Gateway
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. An empty allow-list
// accepts any origin.
func NewWebSocketHandler(gw *gateway.Gateway, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		gateway: gw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: logger.NewLogger("websocket-handler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWebSocket handles incoming WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Zero when the auth middleware is disabled
	userID, _ := middleware.UserIDFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Error upgrading connection", "error", err, "origin", r.Header.Get("Origin"))
		return
	}

	h.gateway.Serve(conn, userID)
}
