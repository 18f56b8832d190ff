package noteservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/tonote/internal/apperr"
	"github.com/starford/tonote/internal/models"
	"github.com/starford/tonote/internal/sse"
)

// Notes returns every note, list by list.
func (s *Service) Notes(_ context.Context) []NoteSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []NoteSummary
	for _, l := range s.store.NoteLists() {
		for _, n := range l.Notes() {
			out = append(out, noteSummary(l.ID(), n))
		}
	}
	return out
}

// Note returns one note with its item views.
func (s *Service) Note(_ context.Context, id uuid.UUID) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, n, err := s.findNote(id)
	if err != nil {
		return nil, err
	}
	return s.noteDetail(l.ID(), n), nil
}

// NoteJSON returns the note in its wire shape.
func (s *Service) NoteJSON(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, n, err := s.findNote(id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("noteservice: encode note: %w", err)
	}
	return data, nil
}

// SetTitle replaces a note's title.
func (s *Service) SetTitle(ctx context.Context, id uuid.UUID, title string) (*NoteDetail, error) {
	return s.mutate(ctx, id, func(n *models.Note) (bool, error) {
		n.SetTitle(title)
		return true, nil
	})
}

// AddText appends a Text item.
func (s *Service) AddText(ctx context.Context, id uuid.UUID, text string) (*NoteDetail, error) {
	return s.mutate(ctx, id, func(n *models.Note) (bool, error) {
		n.AddTextItem(text)
		return true, nil
	})
}

// AddImage appends an Image item.
func (s *Service) AddImage(ctx context.Context, id uuid.UUID, data []byte) (*NoteDetail, error) {
	return s.mutate(ctx, id, func(n *models.Note) (bool, error) {
		n.AddImageItem(data)
		return true, nil
	})
}

// SetText replaces the Text item at index. A missing index is
// apperr.ErrNotFound; a non-text slot is apperr.ErrInvalid.
func (s *Service) SetText(ctx context.Context, id uuid.UUID, index int, text string) (*NoteDetail, error) {
	return s.mutate(ctx, id, func(n *models.Note) (bool, error) {
		item, ok := n.Item(index)
		if !ok {
			return false, fmt.Errorf("noteservice: item %d: %w", index, apperr.ErrNotFound)
		}
		if item.Kind() != models.KindText {
			return false, fmt.Errorf("noteservice: item %d is %s: %w", index, item.VariantName(), apperr.ErrInvalid)
		}
		return n.SetTextItem(index, text), nil
	})
}

// RemoveItem removes the item at index. An out-of-range index leaves the
// note untouched and is not an error.
func (s *Service) RemoveItem(ctx context.Context, id uuid.UUID, index int) (*NoteDetail, error) {
	stopPlayback := false
	d, err := s.mutate(ctx, id, func(n *models.Note) (bool, error) {
		if !n.RemoveItem(index) {
			return false, nil
		}
		if p := s.playing; p != nil && p.noteID == id {
			switch {
			case p.index == index:
				stopPlayback = true
			case p.index > index:
				p.index--
			}
		}
		return true, nil
	})
	if stopPlayback {
		s.player.StopPlayback()
		if d != nil {
			d, err = s.Note(ctx, id)
		}
	}
	return d, err
}

// ItemData returns the binary payload of an Image or Voice item.
func (s *Service) ItemData(_ context.Context, id uuid.UUID, index int) ([]byte, models.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, n, err := s.findNote(id)
	if err != nil {
		return nil, 0, err
	}
	item, ok := n.Item(index)
	if !ok {
		return nil, 0, fmt.Errorf("noteservice: item %d: %w", index, apperr.ErrNotFound)
	}
	data, ok := item.Data()
	if !ok {
		return nil, item.Kind(), fmt.Errorf("noteservice: item %d has no binary payload: %w", index, apperr.ErrInvalid)
	}
	return data, item.Kind(), nil
}

// mutate runs fn on the note under the lock. When fn reports a change the
// note is reindexed and a note.updated event is published.
func (s *Service) mutate(_ context.Context, id uuid.UUID, fn func(*models.Note) (bool, error)) (*NoteDetail, error) {
	s.mu.Lock()
	l, n, err := s.findNote(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	changed, err := fn(n)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if changed {
		s.reindex(l.ID(), n)
	}
	d := s.noteDetail(l.ID(), n)
	s.mu.Unlock()

	if changed {
		s.events.PublishNoteEvent(sse.NoteUpdated, d.ListID, d.ID)
	}
	return d, nil
}
