package device

import (
	"errors"
	"testing"
	"time"
)

func shortWAV(d time.Duration) []byte {
	rate := 1000
	return EncodeWAV(PCM{SampleRate: rate, Channels: 1, Samples: make([]int16, int(d.Seconds()*float64(rate)))})
}

func TestClockPlayerSignalsCompletion(t *testing.T) {
	done := make(chan struct{})
	_, err := NewClockPlayer().Play(shortWAV(30*time.Millisecond), func() { close(done) })
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("finished was never called")
	}
}

func TestClockPlayerStopSuppressesCompletion(t *testing.T) {
	done := make(chan struct{}, 1)
	pb, err := NewClockPlayer().Play(shortWAV(50*time.Millisecond), func() { done <- struct{}{} })
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := pb.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-done:
		t.Fatal("finished called after Stop")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestClockPlayerRejectsNonWAV(t *testing.T) {
	if _, err := NewClockPlayer().Play([]byte("nope"), func() {}); !errors.Is(err, ErrNotWAV) {
		t.Errorf("err = %v, want ErrNotWAV", err)
	}
}
