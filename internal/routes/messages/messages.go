package messageRoutes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/middleware"
	messageService "github.com/nikhil/chatrelay/internal/service/messages"
)

func MessageRoutes(router *mux.Router, messages *messageService.MessageService, tokens middleware.TokenParser) {
	router.HandleFunc("/channels/{id}/messages", messages.ListMessages).Methods(http.MethodGet)

	messageRouter := router.PathPrefix("/messages").Subrouter()
	messageRouter.Use(middleware.AuthMiddleware(tokens))
	messageRouter.HandleFunc("", messages.SendMessage).Methods(http.MethodPost)
	messageRouter.HandleFunc("/{id}", messages.DeleteMessage).Methods(http.MethodDelete)
}
