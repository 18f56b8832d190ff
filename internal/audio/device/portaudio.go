//go:build portaudio

package device

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/starford/tonote/internal/audio"
)

const framesPerBuffer = 1024

// Available reports whether this binary was built with PortAudio support.
const Available = true

// InitPortAudio initializes the PortAudio library. The returned func
// terminates it and must be called once the devices are no longer used.
func InitPortAudio() (func() error, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("device: initialize portaudio: %w", err)
	}
	return portaudio.Terminate, nil
}

// Microphone returns a SourceFactory reading from the default input device.
func Microphone() SourceFactory {
	return func(settings audio.Settings) (SampleSource, error) {
		return &paSource{settings: settings}, nil
	}
}

type paSource struct {
	settings audio.Settings

	mu     sync.Mutex
	stream *portaudio.Stream
}

func (s *paSource) Start(write func([]int16)) error {
	stream, err := portaudio.OpenDefaultStream(
		s.settings.Channels, 0, float64(s.settings.SampleRate), framesPerBuffer,
		func(in []int16) { write(in) },
	)
	if err != nil {
		return fmt.Errorf("device: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("device: start input stream: %w", err)
	}
	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()
	return nil
}

func (s *paSource) Stop() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()
	if stream == nil {
		return nil
	}
	if err := stream.Stop(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("device: stop input stream: %w", err)
	}
	return stream.Close()
}

// Speaker is an audio.PlaybackDevice on the default output device.
type Speaker struct{}

// NewSpeaker creates a PortAudio speaker.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Play decodes data and streams it to the default output device. finished is
// called once the last sample has been handed to the device.
func (sp *Speaker) Play(data []byte, finished func()) (audio.Playback, error) {
	pcm, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("device: play: %w", err)
	}

	pb := &paPlayback{samples: pcm.Samples, finished: finished}
	stream, err := portaudio.OpenDefaultStream(
		0, pcm.Channels, float64(pcm.SampleRate), framesPerBuffer, pb.fill,
	)
	if err != nil {
		return nil, fmt.Errorf("device: open output stream: %w", err)
	}
	pb.stream = stream
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("device: start output stream: %w", err)
	}
	return pb, nil
}

type paPlayback struct {
	stream   *portaudio.Stream
	samples  []int16
	pos      int
	finished func()

	endOnce   sync.Once
	closeOnce sync.Once
	closeErr  error

	mu        sync.Mutex
	cancelled bool
}

// fill runs on the PortAudio callback thread.
func (p *paPlayback) fill(out []int16) {
	n := copy(out, p.samples[p.pos:])
	p.pos += n
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	if p.pos >= len(p.samples) {
		// The stream cannot be stopped from inside its own callback.
		p.endOnce.Do(func() { go p.end() })
	}
}

func (p *paPlayback) end() {
	_ = p.close()
	p.mu.Lock()
	cancelled := p.cancelled
	p.mu.Unlock()
	if !cancelled {
		p.finished()
	}
}

func (p *paPlayback) close() error {
	p.closeOnce.Do(func() {
		if err := p.stream.Stop(); err != nil {
			_ = p.stream.Close()
			p.closeErr = err
			return
		}
		p.closeErr = p.stream.Close()
	})
	return p.closeErr
}

// Stop halts the stream; finished is not called afterwards.
func (p *paPlayback) Stop() error {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
	return p.close()
}
