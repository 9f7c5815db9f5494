package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/traldis/court-queue/realtime"
	"github.com/traldis/court-queue/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The queue views are public; the subscription carries no writes.
		return true
	},
}

type WebSocketHandler struct {
	hub          *realtime.Hub
	queueService services.QueueService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, queueService services.QueueService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		queueService: queueService,
		logger:       logger,
	}
}

// ServeWs subscribes a client to one event's queue updates. The connection
// receives a full snapshot immediately so late joiners never wait for the
// next change.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		badRequestResponse(w, r, errors.New("eventID is required"))
		return
	}

	snap, err := h.queueService.Snapshot(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Error("websocket upgrade failed",
			slog.String("event_id", eventID), slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, eventID)
	client.Send(realtime.Message{
		Type: "QUEUE_UPDATED",
		Payload: map[string]interface{}{
			"event":         snap.Event,
			"solo_queue":    snap.SoloQueue,
			"teams_queue":   snap.TeamsQueue,
			"current_match": snap.CurrentMatch,
		},
	})
}
