package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/starford/tonote/internal/audio"
)

// ClockPlayer is an audio.PlaybackDevice that produces no sound. It decodes
// the WAV buffer to learn its length and signals completion once that much
// time has passed.
type ClockPlayer struct{}

// NewClockPlayer creates a silent player.
func NewClockPlayer() *ClockPlayer {
	return &ClockPlayer{}
}

// Play schedules finished after the buffer's duration.
func (p *ClockPlayer) Play(data []byte, finished func()) (audio.Playback, error) {
	pcm, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("device: play: %w", err)
	}
	cp := &clockPlayback{}
	cp.timer = time.AfterFunc(pcm.Duration(), func() {
		cp.mu.Lock()
		stopped := cp.stopped
		cp.mu.Unlock()
		if !stopped {
			finished()
		}
	})
	return cp, nil
}

type clockPlayback struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func (c *clockPlayback) Stop() error {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.timer.Stop()
	return nil
}
