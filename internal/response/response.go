// Package response writes JSON bodies for the REST handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

var log = logger.NewLogger("response")

// JSON writes payload with the given status code.
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// Error writes {"message": message}.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, map[string]string{"message": message})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
