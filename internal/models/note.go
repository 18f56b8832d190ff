package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// now is the clock used for timestamps. Tests replace it.
var now = time.Now

// Note is an ordered sequence of content items with a title.
//
// The id never changes. LastModifiedAt is never before CreatedAt and moves
// forward on every title or item mutation.
type Note struct {
	id             uuid.UUID
	title          string
	items          []ContentItem
	createdAt      time.Time
	lastModifiedAt time.Time
}

// NewNote creates a note with a fresh id and the given initial items.
func NewNote(title string, items ...ContentItem) *Note {
	ts := now()
	return &Note{
		id:             uuid.New(),
		title:          title,
		items:          append([]ContentItem(nil), items...),
		createdAt:      ts,
		lastModifiedAt: ts,
	}
}

// ID returns the note's stable identifier.
func (n *Note) ID() uuid.UUID { return n.id }

// Title returns the note title.
func (n *Note) Title() string { return n.title }

// CreatedAt returns the creation instant.
func (n *Note) CreatedAt() time.Time { return n.createdAt }

// LastModifiedAt returns the instant of the last mutation.
func (n *Note) LastModifiedAt() time.Time { return n.lastModifiedAt }

// Len returns the number of items.
func (n *Note) Len() int { return len(n.items) }

// Items returns a copy of the item sequence.
func (n *Note) Items() []ContentItem {
	return append([]ContentItem(nil), n.items...)
}

// Item returns the item at index.
func (n *Note) Item(index int) (ContentItem, bool) {
	if index < 0 || index >= len(n.items) {
		return ContentItem{}, false
	}
	return n.items[index], true
}

// SetTitle replaces the title.
func (n *Note) SetTitle(title string) {
	n.title = title
	n.touch()
}

// AddTextItem appends a Text item.
func (n *Note) AddTextItem(text string) {
	n.items = append(n.items, TextItem(text))
	n.touch()
}

// AddImageItem appends an Image item.
func (n *Note) AddImageItem(data []byte) {
	n.items = append(n.items, ImageItem(data))
	n.touch()
}

// AddVoiceItem appends a Voice item.
func (n *Note) AddVoiceItem(data []byte, duration float64) {
	n.items = append(n.items, VoiceItem(data, duration))
	n.touch()
}

// SetTextItem replaces the Text item at index with new text. It reports
// whether a replacement happened; out-of-range indices and non-text slots are
// left alone.
func (n *Note) SetTextItem(index int, text string) bool {
	if index < 0 || index >= len(n.items) || n.items[index].kind != KindText {
		return false
	}
	n.items[index] = TextItem(text)
	n.touch()
	return true
}

// RemoveItem removes the item at index. Out-of-range indices are a silent
// no-op and do not touch LastModifiedAt.
func (n *Note) RemoveItem(index int) bool {
	if index < 0 || index >= len(n.items) {
		return false
	}
	n.items = append(n.items[:index], n.items[index+1:]...)
	n.touch()
	return true
}

// Preview returns the text shown for the note in listings: the title when it
// is not blank, else the preview of the first text item with visible content,
// else a summary of item counts such as "1 text, 2 images".
func (n *Note) Preview() string {
	if !isBlank(n.title) {
		return n.title
	}

	for _, item := range n.items {
		if p, ok := item.PreviewText(); ok && !isBlank(p) {
			return p
		}
	}

	var texts, images, voices int
	for _, item := range n.items {
		switch item.kind {
		case KindText:
			texts++
		case KindImage:
			images++
		case KindVoice:
			voices++
		}
	}

	var parts []string
	if texts > 0 {
		parts = append(parts, fmt.Sprintf("%d text", texts))
	}
	if images > 0 {
		parts = append(parts, fmt.Sprintf("%d image%s", images, plural(images)))
	}
	if voices > 0 {
		parts = append(parts, fmt.Sprintf("%d voice note%s", voices, plural(voices)))
	}
	if len(parts) == 0 {
		return "Empty note"
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether the note has a blank title and only blank text
// items. Any image or voice item makes the note non-empty.
func (n *Note) IsEmpty() bool {
	if !isBlank(n.title) {
		return false
	}
	for _, item := range n.items {
		if item.kind != KindText || !isBlank(item.text) {
			return false
		}
	}
	return true
}

// Clone returns a copy of n sharing no mutable state with it.
func (n *Note) Clone() *Note {
	c := *n
	c.items = n.Items()
	return &c
}

func (n *Note) touch() {
	ts := now()
	if ts.Before(n.createdAt) {
		ts = n.createdAt
	}
	n.lastModifiedAt = ts
}

type noteWire struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Items        []ContentItem `json:"items"`
	Timestamp    *time.Time    `json:"timestamp"`
	LastModified *time.Time    `json:"lastModified,omitempty"`
}

// MarshalJSON encodes the note in its wire shape.
func (n *Note) MarshalJSON() ([]byte, error) {
	items := n.items
	if items == nil {
		items = []ContentItem{}
	}
	return json.Marshal(noteWire{
		ID:           n.id,
		Title:        n.title,
		Items:        items,
		Timestamp:    &n.createdAt,
		LastModified: &n.lastModifiedAt,
	})
}

// UnmarshalJSON decodes a note. A missing "lastModified" defaults to
// "timestamp"; a missing "id" gets a fresh one.
func (n *Note) UnmarshalJSON(data []byte) error {
	var w noteWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("models: decode note: %w", err)
	}
	if w.Timestamp == nil {
		return fmt.Errorf("models: decode note: missing timestamp")
	}
	id := w.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	modified := *w.Timestamp
	if w.LastModified != nil && w.LastModified.After(modified) {
		modified = *w.LastModified
	}
	*n = Note{
		id:             id,
		title:          w.Title,
		items:          w.Items,
		createdAt:      *w.Timestamp,
		lastModifiedAt: modified,
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
