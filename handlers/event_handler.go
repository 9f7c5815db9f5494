package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
	"github.com/traldis/court-queue/services"
)

var errInvalidStatus = errors.New("status must be one of: upcoming, active, paused, finished")

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// ListEvents godoc
// @Summary List events, optionally filtered by status
// @Tags events
// @Produce json
// @Param status query string false "Event status filter" Enums(upcoming, active, paused, finished)
// @Success 200 {object} map[string]interface{}
// @Router /events [get]
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListEventsFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.EventStatus(raw)
		switch status {
		case models.EventStatusUpcoming, models.EventStatusActive, models.EventStatusPaused, models.EventStatusFinished:
			filter.Status = &status
		default:
			badRequestResponse(w, r, errInvalidStatus)
			return
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	events, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetEvent godoc
// @Summary One event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /events/{eventID} [get]
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckInLink godoc
// @Summary The check-in deep link for an event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /events/{eventID}/link [get]
func (h *EventHandler) CheckInLink(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if _, err := h.eventService.GetEvent(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"link": h.eventService.CheckInLink(eventID)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckInQR godoc
// @Summary The check-in deep link rendered as a QR PNG
// @Tags events
// @Produce png
// @Param eventID path string true "Event ID"
// @Param size query int false "Image size in pixels (default 300)"
// @Success 200 {file} binary
// @Router /events/{eventID}/qr [get]
func (h *EventHandler) CheckInQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if _, err := h.eventService.GetEvent(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}

	png, err := h.eventService.CheckInQR(eventID, size)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
