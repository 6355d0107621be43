package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikhil/chatrelay/internal/models"
	"github.com/nikhil/chatrelay/internal/response"
	services "github.com/nikhil/chatrelay/internal/service/auth"
)

type AuthHandler struct {
	Service *services.AuthService
}

// NewAuthHandler creates a new instance of AuthHandler. A nil service means
// token issuing is disabled.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

type tokenRequest struct {
	UserID int64 `json:"userId"`
}

// IssueToken handles POST /api/auth/token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		response.Error(w, http.StatusServiceUnavailable, "Authentication is disabled")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, expiresAt, user, err := h.Service.IssueToken(req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "User not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      user,
	})
}
