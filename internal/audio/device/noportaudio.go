//go:build !portaudio

package device

import (
	"github.com/starford/tonote/internal/apperr"
	"github.com/starford/tonote/internal/audio"
)

// Available reports whether this binary was built with PortAudio support.
const Available = false

// InitPortAudio reports apperr.ErrNoDevice; build with -tags portaudio for
// hardware support.
func InitPortAudio() (func() error, error) {
	return nil, apperr.ErrNoDevice
}

// Microphone returns a SourceFactory that always fails with
// apperr.ErrNoDevice.
func Microphone() SourceFactory {
	return func(audio.Settings) (SampleSource, error) {
		return nil, apperr.ErrNoDevice
	}
}

// Speaker is a placeholder playback device that always fails with
// apperr.ErrNoDevice.
type Speaker struct{}

// NewSpeaker creates a placeholder speaker.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Play always fails with apperr.ErrNoDevice.
func (sp *Speaker) Play([]byte, func()) (audio.Playback, error) {
	return nil, apperr.ErrNoDevice
}
