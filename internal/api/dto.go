package api

import (
	"github.com/starford/tonote/internal/index"
	"github.com/starford/tonote/internal/noteservice"
)

// CreateListRequest is the request body for creating a list.
type CreateListRequest struct {
	Name string `json:"name" example:"Groceries" validate:"required"`
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title string `json:"title" example:"Call the plumber"`
}

// SetTitleRequest is the request body for renaming a note.
type SetTitleRequest struct {
	Title *string `json:"title" example:"Groceries" validate:"required"`
}

// TextItemRequest is the request body for adding or replacing a text item.
type TextItemRequest struct {
	Text *string `json:"text" example:"milk, eggs" validate:"required"`
}

// RemoveNotesRequest lists note positions to remove from a list.
type RemoveNotesRequest struct {
	Indices []int `json:"indices" example:"0,2" validate:"required,min=1,dive,min=0"`
}

// StopRecordingRequest names the note a finished recording is attached to.
type StopRecordingRequest struct {
	NoteID string `json:"note_id" example:"9b2f7c1e-8d2a-4c55-9f0e-1f4f8a6b3c21" validate:"required,uuid"`
}

// TogglePlaybackRequest names the voice item to toggle.
type TogglePlaybackRequest struct {
	NoteID string `json:"note_id" example:"9b2f7c1e-8d2a-4c55-9f0e-1f4f8a6b3c21" validate:"required,uuid"`
	Index  *int   `json:"index" example:"1" validate:"required,min=0"`
}

// ListSummary is a lightweight list (aliased from the domain layer).
type ListSummary = noteservice.ListSummary

// ListDetail is a list with its note summaries (aliased from the domain layer).
type ListDetail = noteservice.ListDetail

// NoteSummary is a lightweight note (aliased from the domain layer).
type NoteSummary = noteservice.NoteSummary

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// ListsResponse wraps list summaries.
type ListsResponse struct {
	Lists []ListSummary `json:"lists" validate:"required"`
}

// NotesResponse wraps note summaries.
type NotesResponse struct {
	Notes []NoteSummary `json:"notes" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// StopRecordingResponse reports whether a voice item was attached.
type StopRecordingResponse struct {
	Attached bool        `json:"attached"`
	Note     *NoteDetail `json:"note"`
}
