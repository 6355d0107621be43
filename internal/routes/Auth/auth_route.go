package authRoute

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/handlers"
	services "github.com/nikhil/chatrelay/internal/service/auth"
)

// RegisterAuthRoutes mounts token issuing. authService is nil when
// authentication is disabled; the route then answers 503.
func RegisterAuthRoutes(router *mux.Router, authService *services.AuthService) {
	authHandler := handlers.NewAuthHandler(authService)

	// Public routes without auth middleware
	publicRouter := router.PathPrefix("/auth").Subrouter()
	publicRouter.HandleFunc("/token", authHandler.IssueToken).Methods(http.MethodPost)
}
