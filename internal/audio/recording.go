package audio

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

var errEmptyCapture = errors.New("audio: capture produced no data")

// RecordingService is the Idle -> Recording -> Idle state machine that
// captures audio and counts elapsed time in 100 ms ticks.
//
// Completion callbacks run on the caller's goroutine after the service has
// returned to Idle, so they may call Start again.
type RecordingService struct {
	device    CaptureDevice
	settings  Settings
	logger    *slog.Logger
	newTicker func(time.Duration) Ticker
	onTick    func(float64)

	mu       sync.Mutex
	session  CaptureSession
	ticks    int64
	gen      uint64
	stopTick chan struct{}
	tickDone chan struct{}
}

// NewRecordingService creates an idle recording service over device.
func NewRecordingService(device CaptureDevice, opts ...Option) *RecordingService {
	o := buildOptions(opts)
	return &RecordingService{
		device:    device,
		settings:  o.settings,
		logger:    o.logger,
		newTicker: o.newTicker,
		onTick:    o.onTick,
	}
}

// Start opens a fresh capture session and begins ticking. If the device
// cannot be opened the failure is logged and the service stays Idle.
// Calling Start while already recording is logged and ignored.
func (r *RecordingService) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		r.logger.Warn("audio: start called while recording, ignoring")
		return
	}

	sess, err := r.device.Open(r.settings)
	if err != nil {
		r.logger.Error("audio: open capture", slog.String("error", err.Error()))
		return
	}

	r.session = sess
	r.ticks = 0
	r.gen++
	r.stopTick = make(chan struct{})
	r.tickDone = make(chan struct{})
	go r.tick(r.newTicker(TickInterval), r.gen, r.stopTick, r.tickDone)

	r.logger.Info("audio: recording started",
		slog.Int("sample_rate", r.settings.SampleRate),
		slog.Int("channels", r.settings.Channels),
	)
}

func (r *RecordingService) tick(t Ticker, gen uint64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			r.mu.Lock()
			if r.gen != gen {
				r.mu.Unlock()
				return
			}
			r.ticks++
			elapsed := float64(r.ticks) / ticksPerSecond
			hook := r.onTick
			r.mu.Unlock()

			if hook != nil {
				hook(elapsed)
			}
		}
	}
}

// Stop halts capture and delivers the captured bytes and elapsed seconds to
// done with ok set. When nothing valid was captured, or the service was not
// recording, done receives (nil, 0, false) and the caller should discard.
func (r *RecordingService) Stop(done func(data []byte, duration float64, ok bool)) {
	if done == nil {
		done = func([]byte, float64, bool) {}
	}

	sess, ticks, ok := r.halt()
	if !ok {
		done(nil, 0, false)
		return
	}

	data, err := sess.Stop()
	if err == nil && len(data) == 0 {
		err = errEmptyCapture
	}
	if err != nil {
		r.logger.Error("audio: read capture", slog.String("error", err.Error()))
		done(nil, 0, false)
		return
	}

	duration := float64(ticks) / ticksPerSecond
	r.logger.Info("audio: recording stopped",
		slog.Float64("duration", duration),
		slog.Int("bytes", len(data)),
	)
	done(data, duration, true)
}

// ForceStop halts capture and discards whatever was captured. It is a no-op
// when the service is Idle.
func (r *RecordingService) ForceStop() {
	sess, _, ok := r.halt()
	if !ok {
		return
	}
	if _, err := sess.Stop(); err != nil {
		r.logger.Warn("audio: discard capture", slog.String("error", err.Error()))
	}
	r.logger.Info("audio: recording cancelled")
}

// Close releases the service. An active recording is discarded.
func (r *RecordingService) Close() {
	r.ForceStop()
}

// IsRecording reports whether a capture session is active.
func (r *RecordingService) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// ElapsedSeconds returns the elapsed time of the current recording, or of the
// last one once stopped.
func (r *RecordingService) ElapsedSeconds() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(r.ticks) / ticksPerSecond
}

// halt moves the service to Idle and waits for the tick goroutine to exit.
// It returns the session that was active, if any.
func (r *RecordingService) halt() (CaptureSession, int64, bool) {
	r.mu.Lock()
	sess := r.session
	if sess == nil {
		r.mu.Unlock()
		return nil, 0, false
	}
	ticks := r.ticks
	r.session = nil
	r.gen++
	close(r.stopTick)
	tickDone := r.tickDone
	r.stopTick, r.tickDone = nil, nil
	r.mu.Unlock()

	<-tickDone
	return sess, ticks, true
}
