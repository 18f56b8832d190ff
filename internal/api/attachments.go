package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/starford/tonote/internal/checksum"
	"github.com/starford/tonote/internal/models"
)

const maxUploadBytes = 20 << 20 // 20 MB

// UploadImage handles POST /api/notes/{noteID}/items/image
// (multipart/form-data, field "file").
//
//	@Summary		Append an image item
//	@Tags			items
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			noteID	path		string	true	"Note id"
//	@Param			file	formData	file	true	"Image"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{noteID}/items/image [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		writeJSON(w, http.StatusBadRequest, errorBody("file is not an image"))
		return
	}

	n, err := h.svc.AddImage(r.Context(), id, data)
	if err != nil {
		writeError(w, "add image", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// ItemData handles GET /api/notes/{noteID}/items/{index}/data and serves the
// raw bytes of an image or voice item. The ETag is the payload checksum.
func (h *Handler) ItemData(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	data, kind, err := h.svc.ItemData(r.Context(), id, i)
	if err != nil {
		writeError(w, "item data", err)
		return
	}

	etag := checksum.ETag(data)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	contentType := http.DetectContentType(data)
	if kind == models.KindVoice {
		contentType = "audio/wav"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
