package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/queue"
	"github.com/traldis/court-queue/services"
)

// AdminHandler groups the operator actions: event lifecycle, match rotation
// and queue edits. Every route it serves sits behind the session middleware.
type AdminHandler struct {
	queueService services.QueueService
}

func NewAdminHandler(queueService services.QueueService) *AdminHandler {
	return &AdminHandler{queueService: queueService}
}

// ActivateEvent godoc
// @Summary Open an event for check-ins
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/activate [post]
func (h *AdminHandler) ActivateEvent(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.EventStatusActive, nil)
}

// FinishEvent godoc
// @Summary Close an event
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/finish [post]
func (h *AdminHandler) FinishEvent(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.EventStatusFinished, nil)
}

// PauseQueue godoc
// @Summary Pause check-ins without closing the event
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/pause [post]
func (h *AdminHandler) PauseQueue(w http.ResponseWriter, r *http.Request) {
	paused := true
	h.setStatus(w, r, "", &paused)
}

// ResumeQueue godoc
// @Summary Resume check-ins on a paused event
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/resume [post]
func (h *AdminHandler) ResumeQueue(w http.ResponseWriter, r *http.Request) {
	paused := false
	h.setStatus(w, r, "", &paused)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request, status models.EventStatus, isPaused *bool) {
	eventID := chi.URLParam(r, "eventID")

	snap, err := h.queueService.SetEventStatus(r.Context(), eventID, status, isPaused)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartMatch godoc
// @Summary Start a match between the two teams at the head of the queue
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/matches/start [post]
func (h *AdminHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	snap, err := h.queueService.StartNextMatch(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndMatch godoc
// @Summary Finish the running match and requeue both teams at the back
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/matches/end [post]
func (h *AdminHandler) EndMatch(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	snap, err := h.queueService.EndCurrentMatch(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddSoloPlayer godoc
// @Summary Manually add a solo player at the door
// @Tags admin
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 201 {object} map[string]interface{}
// @Router /admin/events/{eventID}/players [post]
func (h *AdminHandler) AddSoloPlayer(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var input queue.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if errs := validateStruct(input); errs != nil {
		failedValidationResponse(w, r, errs)
		return
	}

	snap, err := h.queueService.CheckInSolo(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddTeam godoc
// @Summary Manually add a complete team at the door
// @Tags admin
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 201 {object} map[string]interface{}
// @Router /admin/events/{eventID}/teams [post]
func (h *AdminHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var input teamCheckInInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if errs := validateStruct(input); errs != nil {
		failedValidationResponse(w, r, errs)
		return
	}

	snap, err := h.queueService.CheckInTeam(r.Context(), eventID, input.TeamName, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemovePlayer godoc
// @Summary Remove a waiting solo player from the queue
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Param playerID path string true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/players/{playerID} [delete]
func (h *AdminHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	playerID := chi.URLParam(r, "playerID")

	snap, err := h.queueService.RemovePlayer(r.Context(), eventID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveTeam godoc
// @Summary Remove a waiting team and its roster from the queue
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Param teamID path string true "Team ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/teams/{teamID} [delete]
func (h *AdminHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	teamID := chi.URLParam(r, "teamID")

	snap, err := h.queueService.RemoveTeam(r.Context(), eventID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearQueue godoc
// @Summary Remove every waiting player and team from the event
// @Tags admin
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/events/{eventID}/queue [delete]
func (h *AdminHandler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	snap, err := h.queueService.ClearQueue(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
