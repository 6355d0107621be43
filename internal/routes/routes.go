package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/gateway"
	"github.com/nikhil/chatrelay/internal/hub"
	"github.com/nikhil/chatrelay/internal/middleware"
	"github.com/nikhil/chatrelay/internal/response"
	authRoute "github.com/nikhil/chatrelay/internal/routes/Auth"
	channelRoutes "github.com/nikhil/chatrelay/internal/routes/channels"
	messageRoutes "github.com/nikhil/chatrelay/internal/routes/messages"
	userRoutes "github.com/nikhil/chatrelay/internal/routes/user"
	services "github.com/nikhil/chatrelay/internal/service/auth"
	channelService "github.com/nikhil/chatrelay/internal/service/channels"
	messageService "github.com/nikhil/chatrelay/internal/service/messages"
	profileService "github.com/nikhil/chatrelay/internal/service/users"
)

// Deps carries the services the routes are mounted on. Auth is nil when
// authentication is disabled.
type Deps struct {
	Hub            *hub.Hub
	Gateway        *gateway.Gateway
	Profiles       *profileService.ProfileService
	Channels       *channelService.ChannelService
	Messages       *messageService.MessageService
	Auth           *services.AuthService
	AllowedOrigins []string
}

func (d Deps) tokens() middleware.TokenParser {
	if d.Auth == nil {
		return nil
	}
	return d.Auth
}

// Register all routes
func RegisterAllRoutes(deps Deps) *mux.Router {
	router := mux.NewRouter()
	tokens := deps.tokens()

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ResponseWrapperMiddleware)

	// List of all route registration functions
	routeModules := []func(*mux.Router){
		func(r *mux.Router) { authRoute.RegisterAuthRoutes(r, deps.Auth) },
		func(r *mux.Router) { userRoutes.UserProfileRoutes(r, deps.Profiles, tokens) },
		func(r *mux.Router) { channelRoutes.ChannelRoutes(r, deps.Channels) },
		func(r *mux.Router) { messageRoutes.MessageRoutes(r, deps.Messages, tokens) },
	}
	for _, register := range routeModules {
		register(api)
	}

	RegisterWebSocketRoutes(router, deps.Gateway, tokens, deps.AllowedOrigins)
	router.HandleFunc("/health", health(deps.Hub)).Methods(http.MethodGet)

	return router
}

func health(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"hub":    h.Stats(),
		})
	}
}
