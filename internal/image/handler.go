package image

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/galleria/service/internal/middleware"
	"github.com/galleria/service/internal/response"
)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new image Handler. maxUploadBytes caps multipart bodies.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Upload an image as multipart field "image". The blob is stored under the caller's namespace and recorded in the catalog.
//	@Tags			images
//	@Accept			mpfd
//	@Produce		json
//	@Param			image	formData	file	true	"image file"
//	@Success		201		{object}	response.Envelope{data=Image}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.BadRequest(w, "only image uploads are accepted")
		return
	}

	img, err := h.svc.Upload(r.Context(), userID, header.Filename, contentType, file, header.Size)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, img)
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns the caller's images, most recent first, each with a time-limited presigned read URL.
//	@Tags			images
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]ListEntry}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	entries, err := h.svc.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, entries)
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Deletes the caller's image and its backing blob. Images owned by other users are reported as not found.
//	@Tags			images
//	@Produce		json
//	@Param			id	path		int	true	"image id"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	imageID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "image not found")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, imageID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "image not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}
