package handlers

import (
	"net/http"

	"github.com/traldis/court-queue/services"
)

type ContactHandler struct {
	contactService services.ContactService
}

func NewContactHandler(contactService services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit godoc
// @Summary Store a contact-form message
// @Tags contact
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /contact [post]
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input services.ContactInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if errs := validateStruct(input); errs != nil {
		failedValidationResponse(w, r, errs)
		return
	}

	message, err := h.contactService.SubmitMessage(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
