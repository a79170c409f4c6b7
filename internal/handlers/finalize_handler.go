package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/LanderBuys/strivon-sub004/internal/services"
)

// FinalizeHandler receives object-finalize notifications from the storage
// provider and feeds them into the ingestion pipeline.
type FinalizeHandler struct {
	ingestion *services.IngestionService
	secret    string
}

func NewFinalizeHandler(ingestion *services.IngestionService, webhookSecret string) *FinalizeHandler {
	return &FinalizeHandler{ingestion: ingestion, secret: webhookSecret}
}

// finalizeEvent mirrors the S3-style notification payload. Only the object
// keys matter; everything else is ignored.
type finalizeEvent struct {
	Records []struct {
		S3 struct {
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// HandleFinalize processes POST /hooks/storage/finalize. Any ingestion
// failure returns 500 so the provider redelivers; ingestion is idempotent
// so replays are harmless.
func (h *FinalizeHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	provided := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid webhook secret"})
		return
	}

	var event finalizeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed event payload"})
		return
	}

	processed := 0
	for _, rec := range event.Records {
		if rec.S3.Object.Key == "" {
			continue
		}
		// Notification keys arrive URL-encoded (spaces as "+").
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			log.Printf("[Finalize] Skipping undecodable key %q: %v", rec.S3.Object.Key, err)
			continue
		}
		if err := h.ingestion.HandleFinalize(r.Context(), key); err != nil {
			log.Printf("[Finalize] Ingestion failed for key=%s: %v", key, err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "ingestion failed"})
			return
		}
		processed++
	}

	respondJSON(w, http.StatusOK, map[string]int{"processed": processed})
}
