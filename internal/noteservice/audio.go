package noteservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/tonote/internal/apperr"
	"github.com/starford/tonote/internal/models"
	"github.com/starford/tonote/internal/sse"
)

// StartRecording begins a voice recording. It fails with apperr.ErrNoDevice
// when the capture device could not be opened.
func (s *Service) StartRecording(_ context.Context) (RecordingState, error) {
	already := s.recorder.IsRecording()
	s.recorder.Start()
	st := s.recordingState()
	if !st.Recording {
		return st, fmt.Errorf("noteservice: start recording: %w", apperr.ErrNoDevice)
	}
	if !already {
		s.events.Publish(sse.Event{Type: sse.RecordingStarted, Data: st})
	}
	return st, nil
}

// StopRecording ends the recording and appends it to the note as a Voice
// item. attached is false when nothing usable was captured; the note is then
// left unchanged.
func (s *Service) StopRecording(ctx context.Context, noteID uuid.UUID) (d *NoteDetail, attached bool, err error) {
	s.mu.Lock()
	_, _, err = s.findNote(noteID)
	s.mu.Unlock()
	if err != nil {
		return nil, false, err
	}

	var (
		data     []byte
		duration float64
	)
	s.recorder.Stop(func(b []byte, dur float64, ok bool) {
		data, duration, attached = b, dur, ok
	})
	s.events.Publish(sse.Event{Type: sse.RecordingStopped, Data: map[string]any{
		"note_id":  noteID.String(),
		"attached": attached,
		"duration": duration,
	}})

	if !attached {
		d, err = s.Note(ctx, noteID)
		return d, false, err
	}
	d, err = s.mutate(ctx, noteID, func(n *models.Note) (bool, error) {
		n.AddVoiceItem(data, duration)
		return true, nil
	})
	if err != nil {
		// The note was removed while recording.
		s.logger.Warn("recording discarded", slog.String("note_id", noteID.String()), slog.String("error", err.Error()))
		return nil, false, err
	}
	return d, true, nil
}

// CancelRecording discards an active recording.
func (s *Service) CancelRecording(_ context.Context) RecordingState {
	was := s.recorder.IsRecording()
	s.recorder.ForceStop()
	if was {
		s.events.Publish(sse.Event{Type: sse.RecordingStopped, Data: map[string]any{"attached": false}})
	}
	return s.recordingState()
}

// Recording returns the recorder state.
func (s *Service) Recording(_ context.Context) RecordingState {
	return s.recordingState()
}

func (s *Service) recordingState() RecordingState {
	return RecordingState{Recording: s.recorder.IsRecording(), Elapsed: s.recorder.ElapsedSeconds()}
}

// TogglePlayback toggles the Voice item at index of the note. Any other
// playback is stopped first.
func (s *Service) TogglePlayback(_ context.Context, noteID uuid.UUID, index int) (PlaybackState, error) {
	s.mu.Lock()
	l, n, err := s.findNote(noteID)
	if err != nil {
		s.mu.Unlock()
		return PlaybackState{}, err
	}
	item, ok := n.Item(index)
	if !ok {
		s.mu.Unlock()
		return PlaybackState{}, fmt.Errorf("noteservice: item %d: %w", index, apperr.ErrNotFound)
	}
	data, _, ok := item.Voice()
	if !ok {
		s.mu.Unlock()
		return PlaybackState{}, fmt.Errorf("noteservice: item %d is %s: %w", index, item.VariantName(), apperr.ErrNotVoice)
	}
	listID := l.ID()
	s.mu.Unlock()

	s.player.TogglePlayback(data)

	s.mu.Lock()
	started := false
	if s.player.IsPlaying(data) {
		s.playing = &playingItem{listID: listID, noteID: noteID, index: index}
		started = true
	}
	st := s.playbackState()
	s.mu.Unlock()

	if started {
		s.events.Publish(sse.Event{Type: sse.PlaybackStarted, Data: st})
	}
	return st, nil
}

// StopPlayback stops any playback.
func (s *Service) StopPlayback(_ context.Context) PlaybackState {
	s.player.StopPlayback()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playbackState()
}

// Playback returns what is playing.
func (s *Service) Playback(_ context.Context) PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playbackState()
}

// CloseNote is called when a note is dismissed. It stops playback and
// discards any recording in progress.
func (s *Service) CloseNote(ctx context.Context, noteID uuid.UUID) error {
	s.mu.Lock()
	_, _, err := s.findNote(noteID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.player.StopPlayback()
	s.CancelRecording(ctx)
	return nil
}

// playbackState must be called with s.mu held.
func (s *Service) playbackState() PlaybackState {
	if s.playing == nil {
		return PlaybackState{}
	}
	i := s.playing.index
	return PlaybackState{Playing: true, NoteID: s.playing.noteID.String(), Index: &i}
}

// onPlaybackState is the player's state hook. It runs without s.mu held.
func (s *Service) onPlaybackState(playing bool) {
	// A late stop signal from a replaced session must not clear the marker
	// of the one now playing.
	if playing || s.player.Playing() {
		return
	}
	s.mu.Lock()
	prev := s.playing
	s.playing = nil
	s.mu.Unlock()

	if prev != nil {
		s.events.Publish(sse.Event{Type: sse.PlaybackStopped, Data: map[string]any{
			"note_id": prev.noteID.String(),
			"index":   prev.index,
		}})
	}
}
