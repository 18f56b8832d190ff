package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tonote/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Lists.
	r.Get("/lists", h.ListLists)
	r.Post("/lists", h.CreateList)
	r.Route("/lists/{listID}", func(r chi.Router) {
		r.Get("/", h.GetList)
		r.Delete("/", h.DeleteList)
		r.Post("/notes", h.AddNote)
		r.Post("/notes/remove", h.RemoveNotesAt)
		r.Delete("/notes/{noteID}", h.RemoveNote)
		r.Post("/sort", h.SortList)
	})

	// Notes and their items.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.QuickNote)
	r.Route("/notes/{noteID}", func(r chi.Router) {
		r.Get("/", h.GetNote)
		r.Patch("/", h.SetTitle)
		r.Post("/close", h.CloseNote)
		r.Post("/items/text", h.AddText)
		r.Post("/items/image", h.UploadImage)
		r.Put("/items/{index}", h.SetText)
		r.Delete("/items/{index}", h.RemoveItem)
		r.Get("/items/{index}/data", h.ItemData)
	})

	// Audio.
	r.Get("/recording", h.RecordingState)
	r.Post("/recording/start", h.StartRecording)
	r.Post("/recording/stop", h.StopRecording)
	r.Post("/recording/cancel", h.CancelRecording)
	r.Get("/playback", h.PlaybackState)
	r.Post("/playback/toggle", h.TogglePlayback)
	r.Post("/playback/stop", h.StopPlayback)

	// Search and export.
	r.Get("/search", h.Search)
	r.Get("/export", h.Export)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
