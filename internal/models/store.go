package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DefaultListName is the list created when a note is added to an empty store.
const DefaultListName = "Notes"

// DataStore is the root of the note tree. It owns every NoteList.
type DataStore struct {
	noteLists []*NoteList
}

// NewDataStore creates a store holding lists in the given order.
func NewDataStore(lists ...*NoteList) *DataStore {
	return &DataStore{noteLists: append([]*NoteList(nil), lists...)}
}

// NewSeededDataStore creates a store with the demo lists shown on first launch.
func NewSeededDataStore() *DataStore {
	return NewDataStore(
		NewNoteList("Journal",
			NewNote("Morning thoughts about creativity and finding inspiration in everyday...", TextItem("Today, 9:30 AM")),
			NewNote("Coffee shop sketching session", TextItem("Yesterday, 2:15 PM")),
			NewNote("Design inspiration from Behance", TextItem("behance.net/gallery/somet...")),
		),
		NewNoteList("Work",
			NewNote("Meeting Q3", TextItem("Discussed Q3 roadmap.")),
		),
		NewNoteList("Ideas"),
	)
}

// NoteLists returns the lists in order. The slice is a copy; the lists are not.
func (s *DataStore) NoteLists() []*NoteList {
	return append([]*NoteList(nil), s.noteLists...)
}

// NoteList returns the list with the given id.
func (s *DataStore) NoteList(id uuid.UUID) (*NoteList, bool) {
	for _, l := range s.noteLists {
		if l.id == id {
			return l, true
		}
	}
	return nil, false
}

// AddNoteList appends a new empty list. Names are not deduplicated.
func (s *DataStore) AddNoteList(name string) *NoteList {
	l := NewNoteList(name)
	s.noteLists = append(s.noteLists, l)
	return l
}

// RemoveNoteList removes the list with the given id and every note it owns.
func (s *DataStore) RemoveNoteList(id uuid.UUID) bool {
	for i, l := range s.noteLists {
		if l.id == id {
			s.noteLists = append(s.noteLists[:i:i], s.noteLists[i+1:]...)
			return true
		}
	}
	return false
}

// AllNotes returns every note, list by list, each list in its own order.
func (s *DataStore) AllNotes() []*Note {
	var out []*Note
	for _, l := range s.noteLists {
		out = append(out, l.notes...)
	}
	return out
}

// FindNote returns the note with the given id and the list that owns it.
func (s *DataStore) FindNote(id uuid.UUID) (*NoteList, *Note, bool) {
	for _, l := range s.noteLists {
		if n, ok := l.Note(id); ok {
			return l, n, true
		}
	}
	return nil, nil, false
}

// AddNoteToFirstList adds a note to the first list, creating a list named
// DefaultListName when the store has none.
func (s *DataStore) AddNoteToFirstList(title string) (*NoteList, *Note) {
	if len(s.noteLists) == 0 {
		s.AddNoteList(DefaultListName)
	}
	l := s.noteLists[0]
	return l, l.AddNote(title)
}

type dataStoreWire struct {
	NoteLists []*NoteList `json:"noteLists"`
}

// MarshalJSON encodes the whole tree.
func (s *DataStore) MarshalJSON() ([]byte, error) {
	lists := s.noteLists
	if lists == nil {
		lists = []*NoteList{}
	}
	return json.Marshal(dataStoreWire{NoteLists: lists})
}

// UnmarshalJSON decodes the whole tree.
func (s *DataStore) UnmarshalJSON(data []byte) error {
	var w dataStoreWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("models: decode data store: %w", err)
	}
	lists := make([]*NoteList, 0, len(w.NoteLists))
	for _, l := range w.NoteLists {
		if l != nil {
			lists = append(lists, l)
		}
	}
	s.noteLists = lists
	return nil
}
