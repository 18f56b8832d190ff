package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// NoteList is a named, ordered collection of notes. It owns its notes.
type NoteList struct {
	id    uuid.UUID
	name  string
	notes []*Note
}

// NewNoteList creates a list with a fresh id holding notes in the given order.
func NewNoteList(name string, notes ...*Note) *NoteList {
	return &NoteList{
		id:    uuid.New(),
		name:  name,
		notes: append([]*Note(nil), notes...),
	}
}

// ID returns the list's stable identifier.
func (l *NoteList) ID() uuid.UUID { return l.id }

// Name returns the list name.
func (l *NoteList) Name() string { return l.name }

// Len returns the number of notes.
func (l *NoteList) Len() int { return len(l.notes) }

// Notes returns the notes in list order. The slice is a copy; the notes are not.
func (l *NoteList) Notes() []*Note {
	return append([]*Note(nil), l.notes...)
}

// Note returns the note with the given id.
func (l *NoteList) Note(id uuid.UUID) (*Note, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l.notes[i], true
	}
	return nil, false
}

// AddNote creates a note with title and inserts it at the front of the list,
// so the most recently added note comes first.
func (l *NoteList) AddNote(title string) *Note {
	n := NewNote(title)
	l.notes = append([]*Note{n}, l.notes...)
	return n
}

// RemoveNotesAt removes the notes at the given positions. Positions refer to
// the order before removal; duplicates and out-of-range positions are ignored.
func (l *NoteList) RemoveNotesAt(indices ...int) {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(l.notes) {
			drop[i] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := l.notes[:0:0]
	for i, n := range l.notes {
		if _, ok := drop[i]; !ok {
			kept = append(kept, n)
		}
	}
	l.notes = kept
}

// RemoveNote removes the note with the given id. It reports whether a note was
// removed; an unknown id is a no-op.
func (l *NoteList) RemoveNote(id uuid.UUID) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.notes = append(l.notes[:i:i], l.notes[i+1:]...)
	return true
}

// SortByLastModified orders notes by LastModifiedAt, newest first. Notes with
// equal timestamps keep their relative order.
func (l *NoteList) SortByLastModified() {
	sort.SliceStable(l.notes, func(i, j int) bool {
		return l.notes[i].lastModifiedAt.After(l.notes[j].lastModifiedAt)
	})
}

func (l *NoteList) indexOf(id uuid.UUID) int {
	for i, n := range l.notes {
		if n.id == id {
			return i
		}
	}
	return -1
}

type noteListWire struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Notes []*Note   `json:"notes"`
}

// MarshalJSON encodes the list in its wire shape.
func (l *NoteList) MarshalJSON() ([]byte, error) {
	notes := l.notes
	if notes == nil {
		notes = []*Note{}
	}
	return json.Marshal(noteListWire{ID: l.id, Name: l.name, Notes: notes})
}

// UnmarshalJSON decodes a list and all of its notes. Any note that fails to
// decode fails the whole list.
func (l *NoteList) UnmarshalJSON(data []byte) error {
	var w noteListWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("models: decode note list: %w", err)
	}
	id := w.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	notes := make([]*Note, 0, len(w.Notes))
	for _, n := range w.Notes {
		if n != nil {
			notes = append(notes, n)
		}
	}
	*l = NoteList{id: id, name: w.Name, notes: notes}
	return nil
}
