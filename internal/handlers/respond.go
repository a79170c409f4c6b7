package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/LanderBuys/strivon-sub004/internal/moderr"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("[HTTP] Failed to encode response: %v", err)
		}
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, moderr.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, moderr.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, moderr.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, moderr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, moderr.ErrInvalidState):
		status = http.StatusPreconditionFailed
	case errors.Is(err, moderr.ErrStorage):
		status = http.StatusBadGateway
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
