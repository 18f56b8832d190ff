package audio

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCapture struct {
	mu       sync.Mutex
	openErr  error
	data     []byte
	stopErr  error
	opened   int
	sessions []*fakeSession
}

func (d *fakeCapture) Open(Settings) (CaptureSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened++
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &fakeSession{data: d.data, err: d.stopErr}
	d.sessions = append(d.sessions, s)
	return s, nil
}

func (d *fakeCapture) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

type fakeSession struct {
	data    []byte
	err     error
	stopped atomic.Int32
}

func (s *fakeSession) Stop() ([]byte, error) {
	s.stopped.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

// manualTicker delivers ticks only when the test calls Tick.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }
func (t *manualTicker) Tick()               { t.ch <- time.Now() }

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *tickerFactory) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *tickerFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *tickerFactory) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

type fakePlayer struct {
	mu       sync.Mutex
	playErr  error
	sessions []*fakePlayback
	events   []string
	// finishOnPlay makes Play signal completion before returning.
	finishOnPlay bool
}

func (d *fakePlayer) Play(data []byte, finished func()) (Playback, error) {
	d.mu.Lock()
	if d.playErr != nil {
		d.mu.Unlock()
		return nil, d.playErr
	}
	pb := &fakePlayback{player: d, data: string(data), finished: finished}
	d.sessions = append(d.sessions, pb)
	d.events = append(d.events, "play "+string(data))
	immediate := d.finishOnPlay
	d.mu.Unlock()

	if immediate {
		finished()
	}
	return pb, nil
}

func (d *fakePlayer) log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func (d *fakePlayer) session(i int) *fakePlayback {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[i]
}

type fakePlayback struct {
	player   *fakePlayer
	data     string
	finished func()
	stopped  atomic.Bool
}

func (p *fakePlayback) Stop() error {
	p.stopped.Store(true)
	p.player.mu.Lock()
	p.player.events = append(p.player.events, "stop "+p.data)
	p.player.mu.Unlock()
	return nil
}

var errDevice = errors.New("device unavailable")
