package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/traldis/court-queue/services"
)

// maxPhotoSize caps gallery uploads at 10MB.
const maxPhotoSize = 10 << 20

type MediaHandler struct {
	mediaService services.MediaService
}

func NewMediaHandler(mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadPhoto godoc
// @Summary Upload a photo to an event's gallery
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param eventID path string true "Event ID"
// @Param photo formData file true "Photo file (jpeg, png or webp)"
// @Param caption formData string false "Optional caption"
// @Success 201 {object} map[string]interface{}
// @Router /admin/events/{eventID}/photos [post]
func (h *MediaHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		badRequestResponse(w, r, errors.New("could not parse multipart form, the file may be too large"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, errors.New("photo file is required"))
		return
	}
	defer file.Close()

	var caption *string
	if c := r.FormValue("caption"); c != "" {
		caption = &c
	}

	contentType := header.Header.Get("Content-Type")
	photo, err := h.mediaService.UploadEventPhoto(r.Context(), eventID, caption, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"photo": photo}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPhotos godoc
// @Summary Photos uploaded for an event
// @Tags media
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /events/{eventID}/photos [get]
func (h *MediaHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	photos, err := h.mediaService.ListEventPhotos(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"photos": photos}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePhoto godoc
// @Summary Delete a photo from an event's gallery
// @Tags media
// @Produce json
// @Param eventID path string true "Event ID"
// @Param photoID path string true "Photo ID"
// @Success 204
// @Router /admin/events/{eventID}/photos/{photoID} [delete]
func (h *MediaHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoID")

	if err := h.mediaService.DeleteEventPhoto(r.Context(), photoID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
