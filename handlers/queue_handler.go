package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/traldis/court-queue/queue"
	"github.com/traldis/court-queue/services"
)

var validate = validator.New()

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// GetQueue godoc
// @Summary Full queue state for one event
// @Tags queue
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /events/{eventID}/queue [get]
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	snap, err := h.queueService.Snapshot(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, snapshotResponse(snap), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckInSolo godoc
// @Summary Check a solo player into the event queue
// @Tags queue
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 201 {object} map[string]interface{}
// @Router /events/{eventID}/checkin/solo [post]
func (h *QueueHandler) CheckInSolo(w http.ResponseWriter, r *http.Request) {
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

type teamCheckInInput struct {
	TeamName string              `json:"team_name" validate:"required"`
	Players  []queue.PlayerInput `json:"players" validate:"required,len=5,dive"`
}

// CheckInTeam godoc
// @Summary Check a complete five-player team into the event queue
// @Tags queue
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 201 {object} map[string]interface{}
// @Router /events/{eventID}/checkin/team [post]
func (h *QueueHandler) CheckInTeam(w http.ResponseWriter, r *http.Request) {
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

func snapshotResponse(snap queue.Snapshot) jsonResponse {
	return jsonResponse{
		"event":         snap.Event,
		"solo_queue":    snap.SoloQueue,
		"teams_queue":   snap.TeamsQueue,
		"current_match": snap.CurrentMatch,
	}
}

func validateStruct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic(err) // programmer error, v is not a struct
	}
	errs := make(map[string]string)
	for _, fe := range fieldErrs {
		errs[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
	}
	return errs
}
