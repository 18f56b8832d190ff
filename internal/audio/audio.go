// Package audio implements the recording and playback state machines.
//
// The services never talk to hardware directly. They drive an injected
// CaptureDevice or PlaybackDevice, so the same state machines run against
// PortAudio, a WAV file writer, or a test double.
package audio

import (
	"log/slog"
	"time"
)

// TickInterval is the resolution of the recording elapsed-time counter.
// Every tick adds exactly one tenth of a second.
const TickInterval = 100 * time.Millisecond

const ticksPerSecond = 10

// Settings describes the capture format requested from a device.
type Settings struct {
	SampleRate int
	Channels   int
}

// DefaultSettings returns 12 kHz mono, the format voice notes are recorded in.
func DefaultSettings() Settings {
	return Settings{SampleRate: 12000, Channels: 1}
}

// CaptureDevice opens capture sessions.
type CaptureDevice interface {
	Open(settings Settings) (CaptureSession, error)
}

// CaptureSession is one active capture. Stop halts capture and returns every
// byte captured since Open. A session is stopped at most once.
type CaptureSession interface {
	Stop() ([]byte, error)
}

// PlaybackDevice starts playback of an encoded buffer. The device calls
// finished once when the buffer has been played to the end; it is not called
// after Stop.
type PlaybackDevice interface {
	Play(data []byte, finished func()) (Playback, error)
}

// Playback is one active playback session.
type Playback interface {
	Stop() error
}

// Ticker is the subset of time.Ticker the recording service needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option configures a RecordingService or PlaybackService.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	settings  Settings
	newTicker func(time.Duration) Ticker
	onTick    func(elapsed float64)
	onState   func(playing bool)
}

func buildOptions(opts []Option) options {
	o := options{
		logger:    slog.Default(),
		settings:  DefaultSettings(),
		newTicker: newTimeTicker,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for device failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSettings sets the capture format.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithTicker replaces the tick source. Tests use it to drive ticks by hand.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(o *options) {
		if fn != nil {
			o.newTicker = fn
		}
	}
}

// WithTickHandler registers fn to be called after every recording tick with
// the new elapsed time. fn runs on the tick goroutine and must not call back
// into Stop, ForceStop or Close.
func WithTickHandler(fn func(elapsed float64)) Option {
	return func(o *options) {
		o.onTick = fn
	}
}

// WithStateHandler registers fn to be called whenever playback starts or ends,
// including natural completion. fn must not call back into the service.
func WithStateHandler(fn func(playing bool)) Option {
	return func(o *options) {
		o.onState = fn
	}
}
