package device

import (
	"math"
	"sync"
	"time"

	"github.com/starford/tonote/internal/audio"
)

// ToneSource is a SampleSource that synthesizes a sine wave in real time, one
// buffer per 100 ms. It stands in for a microphone on hosts without one.
type ToneSource struct {
	freq     float64
	settings audio.Settings
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Tone returns a SourceFactory producing a freq Hz tone.
func Tone(freq float64) SourceFactory {
	return func(settings audio.Settings) (SampleSource, error) {
		return &ToneSource{freq: freq, settings: settings, interval: 100 * time.Millisecond}, nil
	}
}

// Start begins generating samples into write.
func (t *ToneSource) Start(write func([]int16)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return nil
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(write, t.stop, t.done)
	return nil
}

func (t *ToneSource) run(write func([]int16), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	frames := int(float64(t.settings.SampleRate) * t.interval.Seconds())
	buf := make([]int16, frames*t.settings.Channels)
	var n int
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for f := 0; f < frames; f++ {
				v := int16(0.3 * math.MaxInt16 * math.Sin(2*math.Pi*t.freq*float64(n)/float64(t.settings.SampleRate)))
				for c := 0; c < t.settings.Channels; c++ {
					buf[f*t.settings.Channels+c] = v
				}
				n++
			}
			write(buf)
		}
	}
}

// Stop halts generation and waits until write is no longer called.
func (t *ToneSource) Stop() error {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}
