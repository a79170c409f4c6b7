package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LanderBuys/strivon-sub004/internal/services"
)

// QueueWSHandler streams moderation queue stats to connected dashboards.
type QueueWSHandler struct {
	moderation *services.ModerationService
	upgrader   websocket.Upgrader
	interval   time.Duration
}

func NewQueueWSHandler(moderation *services.ModerationService) *QueueWSHandler {
	return &QueueWSHandler{
		moderation: moderation,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin is checked by the CORS layer; tokens gate access.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		interval: 5 * time.Second,
	}
}

// HandleQueueWS upgrades GET /api/admin/moderation/queue/ws and pushes the
// pipeline stats on connect and every few seconds after.
func (h *QueueWSHandler) HandleQueueWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[QueueWS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := h.pushStats(conn, r); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := h.pushStats(conn, r); err != nil {
				return
			}
		}
	}
}

func (h *QueueWSHandler) pushStats(conn *websocket.Conn, r *http.Request) error {
	stats, err := h.moderation.PipelineStats(r.Context())
	if err != nil {
		log.Printf("[QueueWS] Stats query failed: %v", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(stats)
}
