package device

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/tonote/internal/audio"
	"github.com/starford/tonote/internal/storage"
	"github.com/starford/tonote/internal/testutil"
)

func scratch(t *testing.T) *storage.FS {
	t.Helper()
	_, fs := testutil.TestScratch(t)
	return fs
}

func quietLogger() *slog.Logger {
	return testutil.Logger()
}

func TestWAVCaptureProducesDecodableFile(t *testing.T) {
	fs := scratch(t)
	c := NewWAVCapture(fs, Tone(440), quietLogger())

	sess, err := c.Open(audio.Settings{SampleRate: 8000, Channels: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	names, _ := fs.List(CaptureSuffix)
	if len(names) != 1 {
		t.Fatalf("capture targets = %v, want exactly one", names)
	}

	time.Sleep(350 * time.Millisecond)
	data, err := sess.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	pcm, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if pcm.SampleRate != 8000 || pcm.Channels != 1 {
		t.Errorf("format = %d/%d", pcm.SampleRate, pcm.Channels)
	}
	if len(pcm.Samples) == 0 || len(pcm.Samples)%800 != 0 {
		t.Errorf("samples = %d, want a positive multiple of 800", len(pcm.Samples))
	}

	names, _ = fs.List(CaptureSuffix)
	if len(names) != 0 {
		t.Errorf("capture target not removed: %v", names)
	}
}

func TestWAVCaptureSourceFailureCleansUp(t *testing.T) {
	fs := scratch(t)
	boom := errors.New("boom")
	c := NewWAVCapture(fs, func(audio.Settings) (SampleSource, error) { return nil, boom }, quietLogger())

	if _, err := c.Open(audio.DefaultSettings()); !errors.Is(err, boom) {
		t.Fatalf("Open err = %v, want boom", err)
	}
	names, _ := fs.List(CaptureSuffix)
	if len(names) != 0 {
		t.Errorf("capture target left behind: %v", names)
	}
}

func TestWAVCaptureRejectsBadSettings(t *testing.T) {
	c := NewWAVCapture(scratch(t), Tone(440), quietLogger())
	if _, err := c.Open(audio.Settings{}); err == nil {
		t.Error("expected error for zero settings")
	}
}

func TestRecordingServiceOverWAVCapture(t *testing.T) {
	fs := scratch(t)
	r := audio.NewRecordingService(NewWAVCapture(fs, Tone(440), quietLogger()),
		audio.WithLogger(quietLogger()),
		audio.WithSettings(audio.Settings{SampleRate: 8000, Channels: 1}),
	)

	r.Start()
	if !r.IsRecording() {
		t.Fatal("expected recording")
	}
	time.Sleep(250 * time.Millisecond)

	var got []byte
	var ok bool
	r.Stop(func(data []byte, _ float64, valid bool) { got, ok = data, valid })
	if !ok {
		t.Fatal("expected a valid capture")
	}
	if _, err := DecodeWAV(got); err != nil {
		t.Errorf("DecodeWAV: %v", err)
	}
}
