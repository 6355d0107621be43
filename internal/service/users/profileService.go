package profileService

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/middleware"
	"github.com/nikhil/chatrelay/internal/models"
	"github.com/nikhil/chatrelay/internal/response"
	"github.com/nikhil/chatrelay/internal/store"
)

// StatusSetter changes a user's status and announces it.
type StatusSetter interface {
	SetStatus(ctx context.Context, userID int64, status string) (models.User, error)
}

type ProfileService struct {
	Store    *store.Store
	Presence StatusSetter
	Log      *logger.Logger
}

func NewProfileService(st *store.Store, presence StatusSetter) *ProfileService {
	return &ProfileService{
		Store:    st,
		Presence: presence,
		Log:      logger.NewLogger("profile-service"),
	}
}

func (profile *ProfileService) ListUsers(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, profile.Store.ListUsers())
}

// GetCurrentUser returns the user bound to the request token.
func (profile *ProfileService) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusNotFound, "User not found")
		return
	}
	user, err := profile.Store.GetUser(userID)
	if err != nil {
		response.Error(w, response.StatusFor(err), "User not found")
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (profile *ProfileService) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid user data")
		return
	}

	user, err := profile.Store.CreateUser(req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidArgument) {
			response.Error(w, http.StatusBadRequest, "Invalid user data")
			return
		}
		profile.Log.Error("Failed to create user", "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	profile.Log.WithUser(user.ID).Info("User created", "username", user.Username)
	response.JSON(w, http.StatusCreated, user)
}

// UpdateUserStatus goes through presence so every connection hears about it.
func (profile *ProfileService) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if bound, ok := middleware.UserIDFromContext(r.Context()); ok && bound != userID {
		response.Error(w, http.StatusForbidden, "Cannot update another user")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid status")
		return
	}

	user, err := profile.Presence.SetStatus(r.Context(), userID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			response.Error(w, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, models.ErrNotFound):
			response.Error(w, http.StatusNotFound, "User not found")
		default:
			profile.Log.Error("Failed to update user status", "user_id", userID, "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to update user status")
		}
		return
	}
	response.JSON(w, http.StatusOK, user)
}
