package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/LanderBuys/strivon-sub004/internal/middleware"
	"github.com/LanderBuys/strivon-sub004/internal/moderr"
	"github.com/LanderBuys/strivon-sub004/internal/services"
)

// ModerationHandler exposes the admin actions over HTTP. Authentication
// and the admin gate run in middleware before these methods.
type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

type mediaActionRequest struct {
	MediaID string `json:"media_id"`
}

// HandleApprove processes POST /api/admin/moderation/approve.
func (h *ModerationHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	var req mediaActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", moderr.ErrInvalidArgument))
		return
	}
	reviewer, _ := middleware.GetUIDFromContext(r.Context())
	if err := h.moderation.Approve(r.Context(), req.MediaID, reviewer); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "approved", "media_id": req.MediaID})
}

// HandleReject processes POST /api/admin/moderation/reject.
func (h *ModerationHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req mediaActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", moderr.ErrInvalidArgument))
		return
	}
	reviewer, _ := middleware.GetUIDFromContext(r.Context())
	if err := h.moderation.Reject(r.Context(), req.MediaID, reviewer); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected", "media_id": req.MediaID})
}

// HandleBanUser processes POST /api/admin/users/{uid}/ban.
func (h *ModerationHandler) HandleBanUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	if err := h.moderation.BanUser(r.Context(), uid); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "banned", "uid": uid})
}

// HandleQueue processes GET /api/admin/moderation/queue with limit/offset
// query parameters.
func (h *ModerationHandler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.moderation.ListQueue(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// HandleStats processes GET /api/admin/moderation/stats.
func (h *ModerationHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.moderation.PipelineStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
