package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/gateway"
	"github.com/nikhil/chatrelay/internal/handlers"
	"github.com/nikhil/chatrelay/internal/middleware"
)

// RegisterWebSocketRoutes registers all WebSocket related routes
func RegisterWebSocketRoutes(router *mux.Router, gw *gateway.Gateway, tokens middleware.TokenParser, allowedOrigins []string) {
	wsHandler := handlers.NewWebSocketHandler(gw, allowedOrigins)

	// WebSocket endpoint with authentication via query parameter
	router.Handle("/ws", middleware.WebSocketAuthMiddleware(tokens)(http.HandlerFunc(wsHandler.HandleWebSocket))).Methods(http.MethodGet)
}
