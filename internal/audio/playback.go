package audio

import (
	"bytes"
	"log/slog"
	"sync"
)

// PlaybackService is the Idle -> Playing -> Idle state machine. At most one
// buffer plays at a time, identified by content equality.
type PlaybackService struct {
	device  PlaybackDevice
	logger  *slog.Logger
	onState func(bool)

	// op serializes Toggle and Stop so a replaced session is always stopped
	// before the next one starts.
	op sync.Mutex

	mu       sync.Mutex
	current  []byte
	playback Playback
	session  uint64
}

// NewPlaybackService creates an idle playback service that owns device.
func NewPlaybackService(device PlaybackDevice, opts ...Option) *PlaybackService {
	o := buildOptions(opts)
	return &PlaybackService{
		device:  device,
		logger:  o.logger,
		onState: o.onState,
	}
}

// IsPlaying reports whether data is the buffer currently playing.
func (p *PlaybackService) IsPlaying(data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playback != nil && bytes.Equal(p.current, data)
}

// Playing reports whether any buffer is playing.
func (p *PlaybackService) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playback != nil
}

// TogglePlayback stops data if it is playing. Otherwise it stops whatever is
// playing and then starts data.
func (p *PlaybackService) TogglePlayback(data []byte) {
	p.op.Lock()
	defer p.op.Unlock()

	p.mu.Lock()
	same := p.playback != nil && bytes.Equal(p.current, data)
	prev := p.detachLocked()
	p.mu.Unlock()

	if prev != nil {
		p.halt(prev)
		p.notify(false)
	}
	if same {
		return
	}
	p.start(data)
}

// StopPlayback halts any active playback. It is safe to call when Idle.
func (p *PlaybackService) StopPlayback() {
	p.op.Lock()
	defer p.op.Unlock()

	p.mu.Lock()
	prev := p.detachLocked()
	p.mu.Unlock()

	if prev != nil {
		p.halt(prev)
		p.notify(false)
	}
}

// Close releases the service, stopping any active playback.
func (p *PlaybackService) Close() {
	p.StopPlayback()
}

func (p *PlaybackService) start(data []byte) {
	buf := bytes.Clone(data)

	p.mu.Lock()
	p.session++
	id := p.session
	p.mu.Unlock()

	pb, err := p.device.Play(buf, func() { p.finished(id) })
	if err != nil {
		p.logger.Error("audio: start playback", slog.String("error", err.Error()))
		return
	}

	p.mu.Lock()
	if p.session != id {
		// Finished before Play returned.
		p.mu.Unlock()
		return
	}
	p.current = buf
	p.playback = pb
	p.mu.Unlock()

	p.logger.Debug("audio: playback started", slog.Int("bytes", len(buf)))
	p.notify(true)
}

// finished handles the device's end-of-playback signal. Signals from a session
// that has already been stopped or replaced are ignored.
func (p *PlaybackService) finished(id uint64) {
	p.mu.Lock()
	if id != p.session {
		p.mu.Unlock()
		return
	}
	p.session++
	wasPlaying := p.playback != nil
	p.playback = nil
	p.current = nil
	p.mu.Unlock()

	if wasPlaying {
		p.logger.Debug("audio: playback finished")
		p.notify(false)
	}
}

// detachLocked clears the playing marker and invalidates the session's
// finish signal. The caller must hold p.mu.
func (p *PlaybackService) detachLocked() Playback {
	pb := p.playback
	p.playback = nil
	p.current = nil
	p.session++
	return pb
}

func (p *PlaybackService) halt(pb Playback) {
	if err := pb.Stop(); err != nil {
		p.logger.Warn("audio: stop playback", slog.String("error", err.Error()))
	}
}

func (p *PlaybackService) notify(playing bool) {
	if p.onState != nil {
		p.onState(playing)
	}
}
