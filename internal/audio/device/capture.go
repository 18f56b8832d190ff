package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/starford/tonote/internal/audio"
	"github.com/starford/tonote/internal/storage"
)

// CaptureSuffix is the file suffix of capture targets in the scratch store.
const CaptureSuffix = ".wav"

// SampleSource produces interleaved 16-bit samples. Start delivers buffers to
// write until Stop returns; write is never called after Stop returns.
type SampleSource interface {
	Start(write func(samples []int16)) error
	Stop() error
}

// SourceFactory opens a sample source for the requested format.
type SourceFactory func(settings audio.Settings) (SampleSource, error)

// WAVCapture is an audio.CaptureDevice that writes PCM from a SampleSource
// into a fresh WAV file in the scratch store, reads it back on Stop, and
// removes it.
type WAVCapture struct {
	store  storage.Provider
	open   SourceFactory
	logger *slog.Logger
}

// NewWAVCapture creates a capture device over store and open.
func NewWAVCapture(store storage.Provider, open SourceFactory, logger *slog.Logger) *WAVCapture {
	if logger == nil {
		logger = slog.Default()
	}
	return &WAVCapture{store: store, open: open, logger: logger}
}

// Open allocates a capture target and starts the sample source.
func (c *WAVCapture) Open(settings audio.Settings) (audio.CaptureSession, error) {
	if settings.SampleRate <= 0 || settings.Channels <= 0 {
		return nil, fmt.Errorf("device: invalid capture settings %+v", settings)
	}

	name := uuid.NewString() + CaptureSuffix
	file, err := c.store.Create(name)
	if err != nil {
		return nil, fmt.Errorf("device: create capture target: %w", err)
	}

	s := &wavSession{
		store:    c.store,
		name:     name,
		file:     file,
		settings: settings,
		logger:   c.logger,
	}
	// Placeholder header; sizes are patched on Stop.
	if _, err := file.Write(wavHeader(settings.SampleRate, settings.Channels, 0)); err != nil {
		s.discard()
		return nil, fmt.Errorf("device: write header: %w", err)
	}

	src, err := c.open(settings)
	if err != nil {
		s.discard()
		return nil, fmt.Errorf("device: open source: %w", err)
	}
	s.source = src
	if err := src.Start(s.write); err != nil {
		s.discard()
		return nil, fmt.Errorf("device: start source: %w", err)
	}
	return s, nil
}

type wavSession struct {
	store    storage.Provider
	name     string
	file     storage.File
	source   SampleSource
	settings audio.Settings
	logger   *slog.Logger

	mu       sync.Mutex
	size     uint32
	writeErr error
	buf      []byte
}

func (s *wavSession) write(samples []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil || s.file == nil {
		return
	}
	if need := 2 * len(samples); cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	b := s.buf[:2*len(samples)]
	putSamples(b, samples)
	if _, err := s.file.Write(b); err != nil {
		s.writeErr = err
		s.logger.Error("device: write samples", slog.String("error", err.Error()))
		return
	}
	s.size += uint32(len(b))
}

// Stop halts the source, finalizes the WAV header and returns the file.
func (s *wavSession) Stop() ([]byte, error) {
	defer s.discard()

	var errs []error
	if err := s.source.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("device: stop source: %w", err))
	}

	s.mu.Lock()
	file, size, writeErr := s.file, s.size, s.writeErr
	s.file = nil
	s.mu.Unlock()

	if file == nil {
		return nil, errors.Join(append(errs, errors.New("device: session already stopped"))...)
	}
	if writeErr != nil {
		errs = append(errs, fmt.Errorf("device: capture: %w", writeErr))
	}
	if _, err := file.WriteAt(wavHeader(s.settings.SampleRate, s.settings.Channels, size), 0); err != nil {
		errs = append(errs, fmt.Errorf("device: patch header: %w", err))
	}
	if err := file.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("device: fsync: %w", err))
	}
	if err := file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("device: close: %w", err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	data, err := s.store.Read(s.name)
	if err != nil {
		return nil, fmt.Errorf("device: read capture: %w", err)
	}
	return data, nil
}

// discard closes the file if still open and removes the capture target.
func (s *wavSession) discard() {
	s.mu.Lock()
	file := s.file
	s.file = nil
	s.mu.Unlock()

	if file != nil {
		_ = file.Close()
	}
	if err := s.store.Delete(s.name); err != nil {
		s.logger.Debug("device: remove capture target", slog.String("error", err.Error()))
	}
}
