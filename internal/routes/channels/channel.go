package channelRoutes

import (
	"net/http"

	"github.com/gorilla/mux"

	channelService "github.com/nikhil/chatrelay/internal/service/channels"
)

func ChannelRoutes(router *mux.Router, channels *channelService.ChannelService) {
	channelRouter := router.PathPrefix("/channels").Subrouter()

	channelRouter.HandleFunc("", channels.ListChannels).Methods(http.MethodGet)
	channelRouter.HandleFunc("", channels.CreateChannel).Methods(http.MethodPost)
	channelRouter.HandleFunc("/{id}", channels.GetChannel).Methods(http.MethodGet)
}
