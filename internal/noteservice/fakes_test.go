package noteservice

import (
	"sync"
	"testing"
	"time"

	"github.com/starford/tonote/internal/audio"
	"github.com/starford/tonote/internal/index"
	"github.com/starford/tonote/internal/models"
	"github.com/starford/tonote/internal/sse"
	"github.com/starford/tonote/internal/testutil"
)

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(typ string) {
	r.mu.Lock()
	r.events = append(r.events, typ)
	r.mu.Unlock()
}

func (r *recorder) Publish(e sse.Event)               { r.add(e.Type) }
func (r *recorder) PublishListEvent(typ, _ string)    { r.add(typ) }
func (r *recorder) PublishNoteEvent(typ, _, _ string) { r.add(typ) }
func (r *recorder) PublishElapsed(float64)            {}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type capture struct {
	data []byte
}

func (c *capture) Open(audio.Settings) (audio.CaptureSession, error) {
	return &captureSession{data: c.data}, nil
}

type captureSession struct {
	data []byte
}

func (s *captureSession) Stop() ([]byte, error) { return s.data, nil }

// speaker plays nothing; tests finish sessions by hand.
type speaker struct {
	mu       sync.Mutex
	finishes []func()
}

func (s *speaker) Play(_ []byte, finished func()) (audio.Playback, error) {
	s.mu.Lock()
	s.finishes = append(s.finishes, finished)
	s.mu.Unlock()
	return stopper{}, nil
}

func (s *speaker) finishLast() {
	s.mu.Lock()
	fn := s.finishes[len(s.finishes)-1]
	s.mu.Unlock()
	fn()
}

type stopper struct{}

func (stopper) Stop() error { return nil }

// manualTicker never fires on its own.
type manualTicker struct {
	ch chan time.Time
}

func (t manualTicker) C() <-chan time.Time { return t.ch }
func (t manualTicker) Stop()               {}

type fixture struct {
	svc     *Service
	store   *models.DataStore
	db      *index.DB
	events  *recorder
	speaker *speaker
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := testutil.TestDB(t)
	store := testutil.SeededStore(t, db)

	f := &fixture{store: store, db: db, events: &recorder{}, speaker: &speaker{}}
	base := []Option{
		WithLogger(testutil.Logger()),
		WithSpeaker(f.speaker),
		WithAudioOptions(audio.WithTicker(func(time.Duration) audio.Ticker {
			return manualTicker{ch: make(chan time.Time)}
		})),
	}
	f.svc = NewService(store, db, f.events, append(base, opts...)...)
	t.Cleanup(f.svc.Close)
	return f
}

func (f *fixture) firstList() *models.NoteList {
	return f.store.NoteLists()[0]
}
