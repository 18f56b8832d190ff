package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSameBufferTwiceEndsIdle(t *testing.T) {
	dev := &fakePlayer{}
	p := NewPlaybackService(dev, WithLogger(discardLogger()))
	a := []byte("A")

	p.TogglePlayback(a)
	require.True(t, p.IsPlaying(a))

	p.TogglePlayback(a)
	assert.False(t, p.IsPlaying(a))
	assert.False(t, p.Playing())
	assert.True(t, dev.session(0).stopped.Load())
	assert.Equal(t, []string{"play A", "stop A"}, dev.log())
}

func TestToggleOtherBufferStopsThenStarts(t *testing.T) {
	dev := &fakePlayer{}
	p := NewPlaybackService(dev, WithLogger(discardLogger()))
	a, b := []byte("A"), []byte("B")

	p.TogglePlayback(a)
	p.TogglePlayback(b)

	assert.False(t, p.IsPlaying(a))
	assert.True(t, p.IsPlaying(b))
	assert.Equal(t, []string{"play A", "stop A", "play B"}, dev.log())
}

func TestIsPlayingComparesContent(t *testing.T) {
	p := NewPlaybackService(&fakePlayer{}, WithLogger(discardLogger()))
	buf := []byte("voice")

	p.TogglePlayback(buf)
	assert.True(t, p.IsPlaying([]byte("voice")))

	buf[0] = 'X'
	assert.True(t, p.IsPlaying([]byte("voice")), "caller mutation must not change the marker")
	assert.False(t, p.IsPlaying(nil))
}

func TestNaturalCompletionReturnsToIdle(t *testing.T) {
	var mu sync.Mutex
	var states []bool
	dev := &fakePlayer{}
	p := NewPlaybackService(dev,
		WithLogger(discardLogger()),
		WithStateHandler(func(playing bool) {
			mu.Lock()
			states = append(states, playing)
			mu.Unlock()
		}),
	)
	a := []byte("A")

	p.TogglePlayback(a)
	dev.session(0).finished()

	assert.False(t, p.IsPlaying(a))
	assert.False(t, p.Playing())
	mu.Lock()
	assert.Equal(t, []bool{true, false}, states)
	mu.Unlock()

	// Toggling again starts a fresh session instead of stopping.
	p.TogglePlayback(a)
	assert.True(t, p.IsPlaying(a))
}

func TestStaleFinishSignalIsIgnored(t *testing.T) {
	dev := &fakePlayer{}
	p := NewPlaybackService(dev, WithLogger(discardLogger()))
	a, b := []byte("A"), []byte("B")

	p.TogglePlayback(a)
	p.TogglePlayback(b)
	dev.session(0).finished()

	assert.True(t, p.IsPlaying(b))
}

func TestFinishBeforePlayReturns(t *testing.T) {
	dev := &fakePlayer{finishOnPlay: true}
	p := NewPlaybackService(dev, WithLogger(discardLogger()))

	p.TogglePlayback([]byte("A"))
	assert.False(t, p.Playing())
}

func TestPlayFailureStaysIdle(t *testing.T) {
	dev := &fakePlayer{playErr: errDevice}
	p := NewPlaybackService(dev, WithLogger(discardLogger()))

	p.TogglePlayback([]byte("A"))
	assert.False(t, p.Playing())
}

func TestStopPlayback(t *testing.T) {
	dev := &fakePlayer{}
	p := NewPlaybackService(dev, WithLogger(discardLogger()))

	p.StopPlayback()
	assert.Empty(t, dev.log(), "stop while idle must not touch the device")

	p.TogglePlayback([]byte("A"))
	p.StopPlayback()
	assert.False(t, p.Playing())
	assert.True(t, dev.session(0).stopped.Load())

	dev.session(0).finished()
	assert.False(t, p.Playing())

	p.Close()
	assert.Equal(t, []string{"play A", "stop A"}, dev.log())
}
