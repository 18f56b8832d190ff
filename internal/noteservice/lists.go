package noteservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/tonote/internal/apperr"
	"github.com/starford/tonote/internal/sse"
)

// Lists returns every list in store order.
func (s *Service) Lists(_ context.Context) []ListSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists := s.store.NoteLists()
	out := make([]ListSummary, 0, len(lists))
	for _, l := range lists {
		out = append(out, listSummary(l))
	}
	return out
}

// List returns one list with its note summaries.
func (s *Service) List(_ context.Context, id uuid.UUID) (*ListDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listDetail(id)
}

// CreateList appends a new empty list.
func (s *Service) CreateList(_ context.Context, name string) (ListSummary, error) {
	if strings.TrimSpace(name) == "" {
		return ListSummary{}, fmt.Errorf("noteservice: create list: %w: empty name", apperr.ErrInvalid)
	}

	s.mu.Lock()
	l := s.store.AddNoteList(name)
	out := listSummary(l)
	s.mu.Unlock()

	s.events.PublishListEvent(sse.ListCreated, out.ID)
	return out, nil
}

// DeleteList removes a list and all of its notes.
func (s *Service) DeleteList(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.store.NoteList(id); !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.store.RemoveNoteList(id)
	stopPlayback := s.playing != nil && s.playing.listID == id
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.DeleteList(id.String()); err != nil {
			s.logger.Warn("index delete failed", "list_id", id.String(), "error", err.Error())
		}
	}
	if stopPlayback {
		s.player.StopPlayback()
	}
	s.events.PublishListEvent(sse.ListDeleted, id.String())
	return nil
}

// AddNote creates a note at the front of a list.
func (s *Service) AddNote(_ context.Context, listID uuid.UUID, title string) (*NoteDetail, error) {
	s.mu.Lock()
	l, ok := s.store.NoteList(listID)
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	n := l.AddNote(title)
	s.reindex(listID, n)
	d := s.noteDetail(listID, n)
	s.mu.Unlock()

	s.events.PublishNoteEvent(sse.NoteCreated, d.ListID, d.ID)
	return d, nil
}

// QuickNote creates a note in the first list, creating a default list when
// the store has none. Blank titles are rejected.
func (s *Service) QuickNote(_ context.Context, title string) (*NoteDetail, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("noteservice: quick note: %w: empty title", apperr.ErrInvalid)
	}

	s.mu.Lock()
	hadLists := len(s.store.NoteLists()) > 0
	l, n := s.store.AddNoteToFirstList(title)
	s.reindex(l.ID(), n)
	d := s.noteDetail(l.ID(), n)
	s.mu.Unlock()

	if !hadLists {
		s.events.PublishListEvent(sse.ListCreated, d.ListID)
	}
	s.events.PublishNoteEvent(sse.NoteCreated, d.ListID, d.ID)
	return d, nil
}

// RemoveNote removes one note from a list. An id not in the list is
// apperr.ErrNotFound.
func (s *Service) RemoveNote(_ context.Context, listID, noteID uuid.UUID) error {
	s.mu.Lock()
	l, ok := s.store.NoteList(listID)
	if !ok || !l.RemoveNote(noteID) {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.unindex(noteID)
	stopPlayback := s.playing != nil && s.playing.noteID == noteID
	s.mu.Unlock()

	if stopPlayback {
		s.player.StopPlayback()
	}
	s.events.PublishNoteEvent(sse.NoteDeleted, listID.String(), noteID.String())
	return nil
}

// RemoveNotesAt removes the notes at the given positions of a list. Out of
// range and duplicate positions are ignored.
func (s *Service) RemoveNotesAt(_ context.Context, listID uuid.UUID, positions []int) (*ListDetail, error) {
	s.mu.Lock()
	l, ok := s.store.NoteList(listID)
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}

	before := l.Notes()
	l.RemoveNotesAt(positions...)
	var removed []uuid.UUID
	for _, n := range before {
		if _, still := l.Note(n.ID()); !still {
			removed = append(removed, n.ID())
			s.unindex(n.ID())
		}
	}
	stopPlayback := false
	for _, id := range removed {
		if s.playing != nil && s.playing.noteID == id {
			stopPlayback = true
		}
	}
	d, err := s.listDetail(listID)
	s.mu.Unlock()

	if stopPlayback {
		s.player.StopPlayback()
	}
	for _, id := range removed {
		s.events.PublishNoteEvent(sse.NoteDeleted, listID.String(), id.String())
	}
	return d, err
}

// SortList orders a list's notes by last modification, newest first.
func (s *Service) SortList(_ context.Context, listID uuid.UUID) (*ListDetail, error) {
	s.mu.Lock()
	l, ok := s.store.NoteList(listID)
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	l.SortByLastModified()
	d, err := s.listDetail(listID)
	s.mu.Unlock()

	s.events.PublishListEvent(sse.ListUpdated, listID.String())
	return d, err
}

// listDetail must be called with s.mu held.
func (s *Service) listDetail(id uuid.UUID) (*ListDetail, error) {
	l, ok := s.store.NoteList(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	notes := l.Notes()
	d := &ListDetail{ListSummary: listSummary(l), Notes: make([]NoteSummary, 0, len(notes))}
	for _, n := range notes {
		d.Notes = append(d.Notes, noteSummary(id, n))
	}
	return d, nil
}
