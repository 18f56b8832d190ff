// Package noteservice is the command layer over the note tree. Every mutation
// goes through it so the search index and event subscribers stay in step with
// the store.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/tonote/internal/apperr"
	"github.com/starford/tonote/internal/audio"
	"github.com/starford/tonote/internal/checksum"
	"github.com/starford/tonote/internal/index"
	"github.com/starford/tonote/internal/models"
	"github.com/starford/tonote/internal/sse"
)

// Notifier receives change events. *sse.Broker implements it.
type Notifier interface {
	Publish(event sse.Event)
	PublishListEvent(typ, listID string)
	PublishNoteEvent(typ, listID, noteID string)
	PublishElapsed(seconds float64)
}

// ListSummary is a lightweight list representation.
type ListSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NoteCount int    `json:"note_count"`
}

// ListDetail is a list with summaries of its notes in list order.
type ListDetail struct {
	ListSummary
	Notes []NoteSummary `json:"notes"`
}

// NoteSummary is a lightweight note representation for listings.
type NoteSummary struct {
	ID           string    `json:"id"`
	ListID       string    `json:"list_id"`
	Title        string    `json:"title"`
	Preview      string    `json:"preview"`
	IsEmpty      bool      `json:"is_empty"`
	ItemCount    int       `json:"item_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// ItemView describes one content item without its binary payload.
type ItemView struct {
	Index    int     `json:"index"`
	Kind     string  `json:"kind"`
	Text     string  `json:"text,omitempty"`
	Size     int     `json:"size,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Digest   string  `json:"digest,omitempty"`
	Playing  bool    `json:"playing,omitempty"`
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	NoteSummary
	Items []ItemView `json:"items"`
}

// RecordingState reports the recorder for live display.
type RecordingState struct {
	Recording bool    `json:"recording"`
	Elapsed   float64 `json:"elapsed"`
}

// PlaybackState reports what is playing, if anything.
type PlaybackState struct {
	Playing bool   `json:"playing"`
	NoteID  string `json:"note_id,omitempty"`
	Index   *int   `json:"index,omitempty"`
}

type playingItem struct {
	listID uuid.UUID
	noteID uuid.UUID
	index  int
}

// Service coordinates the store, the search index, the audio services and
// event publication.
//
// The note tree is not safe for concurrent use; Service serializes all access
// to it with mu. Audio service calls that may invoke Service hooks are made
// without holding mu.
type Service struct {
	mu      sync.Mutex
	store   *models.DataStore
	db      index.NoteIndex
	events  Notifier
	logger  *slog.Logger
	limit   int
	playing *playingItem

	recorder *audio.RecordingService
	player   *audio.PlaybackService
}

// Option configures a Service.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	capture   audio.CaptureDevice
	speaker   audio.PlaybackDevice
	audioOpts []audio.Option
	limit     int
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCapture sets the capture device used for voice notes.
func WithCapture(d audio.CaptureDevice) Option {
	return func(c *config) { c.capture = d }
}

// WithSpeaker sets the playback device.
func WithSpeaker(d audio.PlaybackDevice) Option {
	return func(c *config) { c.speaker = d }
}

// WithAudioOptions passes extra options to both audio services.
func WithAudioOptions(opts ...audio.Option) Option {
	return func(c *config) { c.audioOpts = append(c.audioOpts, opts...) }
}

// WithSearchLimit sets the default number of search results.
func WithSearchLimit(n int) Option {
	return func(c *config) { c.limit = n }
}

// NewService creates a note service over store. db and events may be nil.
func NewService(store *models.DataStore, db index.NoteIndex, events Notifier, opts ...Option) *Service {
	cfg := config{logger: slog.Default(), limit: 20}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capture == nil {
		cfg.capture = noDevice{}
	}
	if cfg.speaker == nil {
		cfg.speaker = noDevice{}
	}
	if events == nil {
		events = nopNotifier{}
	}

	s := &Service{
		store:  store,
		db:     db,
		events: events,
		logger: cfg.logger,
		limit:  cfg.limit,
	}

	base := append([]audio.Option{audio.WithLogger(cfg.logger)}, cfg.audioOpts...)
	base = base[:len(base):len(base)]
	s.recorder = audio.NewRecordingService(cfg.capture,
		append(base, audio.WithTickHandler(events.PublishElapsed))...)
	s.player = audio.NewPlaybackService(cfg.speaker,
		append(base, audio.WithStateHandler(s.onPlaybackState))...)
	return s
}

// Close stops any recording (discarding it) and any playback.
func (s *Service) Close() {
	s.recorder.Close()
	s.player.Close()
}

// Search returns notes whose title or text matches query.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.limit
	}
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("noteservice: search: %w", err)
	}
	return results, nil
}

// Export encodes the whole note tree in its wire shape.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.MarshalJSON()
}

func (s *Service) reindex(listID uuid.UUID, n *models.Note) {
	if s.db == nil {
		return
	}
	if err := s.db.UpsertNote(index.RowFromNote(listID.String(), n)); err != nil {
		s.logger.Warn("index update failed", slog.String("note_id", n.ID().String()), slog.String("error", err.Error()))
	}
}

func (s *Service) unindex(noteID uuid.UUID) {
	if s.db == nil {
		return
	}
	if err := s.db.DeleteNote(noteID.String()); err != nil {
		s.logger.Warn("index delete failed", slog.String("note_id", noteID.String()), slog.String("error", err.Error()))
	}
}

func listSummary(l *models.NoteList) ListSummary {
	return ListSummary{ID: l.ID().String(), Name: l.Name(), NoteCount: l.Len()}
}

func noteSummary(listID uuid.UUID, n *models.Note) NoteSummary {
	return NoteSummary{
		ID:           n.ID().String(),
		ListID:       listID.String(),
		Title:        n.Title(),
		Preview:      n.Preview(),
		IsEmpty:      n.IsEmpty(),
		ItemCount:    n.Len(),
		CreatedAt:    n.CreatedAt(),
		LastModified: n.LastModifiedAt(),
	}
}

// noteDetail must be called with s.mu held.
func (s *Service) noteDetail(listID uuid.UUID, n *models.Note) *NoteDetail {
	d := &NoteDetail{NoteSummary: noteSummary(listID, n), Items: make([]ItemView, 0, n.Len())}
	for i, item := range n.Items() {
		v := ItemView{Index: i, Kind: item.VariantName()}
		switch item.Kind() {
		case models.KindText:
			v.Text, _ = item.Text()
		case models.KindImage:
			data, _ := item.ImageData()
			v.Size, v.Digest = len(data), checksum.Sum(data)
		case models.KindVoice:
			data, dur, _ := item.Voice()
			v.Size, v.Digest, v.Duration = len(data), checksum.Sum(data), dur
			v.Playing = s.playing != nil && s.playing.noteID == n.ID() && s.playing.index == i
		}
		d.Items = append(d.Items, v)
	}
	return d
}

// findNote must be called with s.mu held.
func (s *Service) findNote(id uuid.UUID) (*models.NoteList, *models.Note, error) {
	l, n, ok := s.store.FindNote(id)
	if !ok {
		return nil, nil, apperr.ErrNotFound
	}
	return l, n, nil
}

type noDevice struct{}

func (noDevice) Open(audio.Settings) (audio.CaptureSession, error) { return nil, apperr.ErrNoDevice }
func (noDevice) Play([]byte, func()) (audio.Playback, error)      { return nil, apperr.ErrNoDevice }

type nopNotifier struct{}

func (nopNotifier) Publish(sse.Event)                       {}
func (nopNotifier) PublishListEvent(string, string)         {}
func (nopNotifier) PublishNoteEvent(string, string, string) {}
func (nopNotifier) PublishElapsed(float64)                  {}
