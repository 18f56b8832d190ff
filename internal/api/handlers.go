package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/starford/tonote/internal/index"
	"github.com/starford/tonote/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *noteservice.Service
	validate *validator.Validate
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// idParam parses a UUID path parameter. On failure it writes a 400 response.
func idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return 0, false
	}
	return i, true
}

// ListLists handles GET /api/lists.
//
//	@Summary		List note lists in order
//	@Tags			lists
//	@Produce		json
//	@Success		200	{object}	ListsResponse
//	@Security		BearerAuth
//	@Router			/lists [get]
func (h *Handler) ListLists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListsResponse{Lists: h.svc.Lists(r.Context())})
}

// CreateList handles POST /api/lists.
//
//	@Summary		Create an empty list
//	@Tags			lists
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateListRequest	true	"List to create"
//	@Success		201		{object}	ListSummary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lists [post]
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	l, err := h.svc.CreateList(r.Context(), req.Name)
	if err != nil {
		writeError(w, "create list", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// GetList handles GET /api/lists/{listID}.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "listID")
	if !ok {
		return
	}
	l, err := h.svc.List(r.Context(), id)
	if err != nil {
		writeError(w, "get list", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// DeleteList handles DELETE /api/lists/{listID}.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "listID")
	if !ok {
		return
	}
	if err := h.svc.DeleteList(r.Context(), id); err != nil {
		writeError(w, "delete list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddNote handles POST /api/lists/{listID}/notes.
//
//	@Summary		Create a note at the front of a list
//	@Tags			lists
//	@Accept			json
//	@Produce		json
//	@Param			listID	path		string				true	"List id"
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lists/{listID}/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "listID")
	if !ok {
		return
	}
	var req CreateNoteRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.AddNote(r.Context(), id, req.Title)
	if err != nil {
		writeError(w, "add note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// RemoveNote handles DELETE /api/lists/{listID}/notes/{noteID}.
func (h *Handler) RemoveNote(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(w, r, "listID")
	if !ok {
		return
	}
	noteID, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	if err := h.svc.RemoveNote(r.Context(), listID, noteID); err != nil {
		writeError(w, "remove note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveNotesAt handles POST /api/lists/{listID}/notes/remove.
func (h *Handler) RemoveNotesAt(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "listID")
	if !ok {
		return
	}
	var req RemoveNotesRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	l, err := h.svc.RemoveNotesAt(r.Context(), id, req.Indices)
	if err != nil {
		writeError(w, "remove notes", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SortList handles POST /api/lists/{listID}/sort.
func (h *Handler) SortList(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "listID")
	if !ok {
		return
	}
	l, err := h.svc.SortList(r.Context(), id)
	if err != nil {
		writeError(w, "sort list", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List every note, list by list
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NotesResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.svc.Notes(r.Context())
	if notes == nil {
		notes = []NoteSummary{}
	}
	writeJSON(w, http.StatusOK, NotesResponse{Notes: notes})
}

// QuickNote handles POST /api/notes. The note goes to the first list.
func (h *Handler) QuickNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.QuickNote(r.Context(), req.Title)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// GetNote handles GET /api/notes/{noteID}. With ?format=wire the note is
// returned in its storage encoding.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			noteID	path		string	true	"Note id"
//	@Param			format	query		string	false	"Response shape"	Enums(wire)
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{noteID} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "wire" {
		data, err := h.svc.NoteJSON(r.Context(), id)
		if err != nil {
			writeError(w, "get note", err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(data)
		return
	}
	n, err := h.svc.Note(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// SetTitle handles PATCH /api/notes/{noteID}.
func (h *Handler) SetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	var req SetTitleRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.SetTitle(r.Context(), id, *req.Title)
	if err != nil {
		writeError(w, "set title", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// AddText handles POST /api/notes/{noteID}/items/text.
func (h *Handler) AddText(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	var req TextItemRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.AddText(r.Context(), id, *req.Text)
	if err != nil {
		writeError(w, "add text", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// SetText handles PUT /api/notes/{noteID}/items/{index}.
func (h *Handler) SetText(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req TextItemRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.SetText(r.Context(), id, i, *req.Text)
	if err != nil {
		writeError(w, "set text", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// RemoveItem handles DELETE /api/notes/{noteID}/items/{index}. An index past
// the end leaves the note unchanged.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	n, err := h.svc.RemoveItem(r.Context(), id, i)
	if err != nil {
		writeError(w, "remove item", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CloseNote handles POST /api/notes/{noteID}/close.
func (h *Handler) CloseNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "noteID")
	if !ok {
		return
	}
	if err := h.svc.CloseNote(r.Context(), id); err != nil {
		writeError(w, "close note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across note titles and text
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Export handles GET /api/export and returns the whole note tree.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tonote.json"`)
	_, _ = w.Write(data)
}
