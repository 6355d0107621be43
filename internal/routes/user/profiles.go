package userRoutes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/middleware"
	profileService "github.com/nikhil/chatrelay/internal/service/users"
)

func UserProfileRoutes(router *mux.Router, profile *profileService.ProfileService, tokens middleware.TokenParser) {
	userRouter := router.PathPrefix("/users").Subrouter()
	userRouter.Use(middleware.AuthMiddleware(tokens))

	userRouter.HandleFunc("", profile.ListUsers).Methods(http.MethodGet)
	userRouter.HandleFunc("", profile.CreateUser).Methods(http.MethodPost)
	userRouter.HandleFunc("/me", profile.GetCurrentUser).Methods(http.MethodGet)
	userRouter.HandleFunc("/{id:[0-9]+}/status", profile.UpdateUserStatus).Methods(http.MethodPatch)
}
