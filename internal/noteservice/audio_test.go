package noteservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/starford/tonote/internal/apperr"
	"github.com/starford/tonote/internal/sse"
)

func TestRecordingWithoutDevice(t *testing.T) {
	f := newFixture(t)
	st, err := f.svc.StartRecording(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNoDevice)
	assert.False(t, st.Recording)
}

func TestStopRecordingAttachesVoiceItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithCapture(&capture{data: []byte("RIFF")}))
	n := f.firstList().Notes()[0]

	st, err := f.svc.StartRecording(ctx)
	require.NoError(t, err)
	assert.True(t, st.Recording)

	d, attached, err := f.svc.StopRecording(ctx, n.ID())
	require.NoError(t, err)
	assert.True(t, attached)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "Voice", d.Items[1].Kind)
	assert.False(t, f.svc.Recording(ctx).Recording)
	assert.Equal(t, []string{sse.RecordingStarted, sse.RecordingStopped, sse.NoteUpdated}, f.events.types())
}

func TestStopRecordingEmptyCaptureLeavesNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithCapture(&capture{}))
	n := f.firstList().Notes()[0]

	_, err := f.svc.StartRecording(ctx)
	require.NoError(t, err)
	d, attached, err := f.svc.StopRecording(ctx, n.ID())
	require.NoError(t, err)
	assert.False(t, attached)
	assert.Len(t, d.Items, 1)
}

func TestStopRecordingUnknownNoteKeepsRecording(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithCapture(&capture{data: []byte("x")}))

	_, err := f.svc.StartRecording(ctx)
	require.NoError(t, err)
	_, _, err = f.svc.StopRecording(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.True(t, f.svc.Recording(ctx).Recording)

	st := f.svc.CancelRecording(ctx)
	assert.False(t, st.Recording)
}

func TestTogglePlaybackRejectsNonVoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.firstList().Notes()[0]

	_, err := f.svc.TogglePlayback(ctx, n.ID(), 0)
	assert.ErrorIs(t, err, apperr.ErrNotVoice)
	_, err = f.svc.TogglePlayback(ctx, n.ID(), 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTogglePlaybackMarksItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.firstList().Notes()[0]
	n.AddVoiceItem([]byte("a"), 1)
	n.AddVoiceItem([]byte("b"), 1)

	st, err := f.svc.TogglePlayback(ctx, n.ID(), 1)
	require.NoError(t, err)
	require.True(t, st.Playing)
	assert.Equal(t, 1, *st.Index)

	d, err := f.svc.Note(ctx, n.ID())
	require.NoError(t, err)
	assert.True(t, d.Items[1].Playing)
	assert.False(t, d.Items[2].Playing)

	st, err = f.svc.TogglePlayback(ctx, n.ID(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, *st.Index)

	st, err = f.svc.TogglePlayback(ctx, n.ID(), 2)
	require.NoError(t, err)
	assert.False(t, st.Playing)
	assert.False(t, f.svc.Playback(ctx).Playing)
}

func TestNaturalCompletionClearsMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.firstList().Notes()[0]
	n.AddVoiceItem([]byte("a"), 1)

	_, err := f.svc.TogglePlayback(ctx, n.ID(), 1)
	require.NoError(t, err)
	f.speaker.finishLast()

	assert.False(t, f.svc.Playback(ctx).Playing)
	assert.Contains(t, f.events.types(), sse.PlaybackStopped)
}

func TestRemovingPlayingItemStopsPlayback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.firstList().Notes()[0]
	n.AddVoiceItem([]byte("a"), 1)
	n.AddVoiceItem([]byte("b"), 1)

	_, err := f.svc.TogglePlayback(ctx, n.ID(), 2)
	require.NoError(t, err)

	// Removing an earlier item shifts the marker.
	_, err = f.svc.RemoveItem(ctx, n.ID(), 0)
	require.NoError(t, err)
	st := f.svc.Playback(ctx)
	require.True(t, st.Playing)
	assert.Equal(t, 1, *st.Index)

	d, err := f.svc.RemoveItem(ctx, n.ID(), 1)
	require.NoError(t, err)
	assert.False(t, f.svc.Playback(ctx).Playing)
	for _, it := range d.Items {
		assert.False(t, it.Playing)
	}
}

func TestCloseNoteStopsAudio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithCapture(&capture{data: []byte("x")}))
	n := f.firstList().Notes()[0]
	n.AddVoiceItem([]byte("a"), 1)

	_, err := f.svc.TogglePlayback(ctx, n.ID(), 1)
	require.NoError(t, err)
	_, err = f.svc.StartRecording(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseNote(ctx, n.ID()))
	assert.False(t, f.svc.Playback(ctx).Playing)
	assert.False(t, f.svc.Recording(ctx).Recording)
	assert.Len(t, n.Items(), 2, "a closed note keeps no partial recording")

	assert.ErrorIs(t, f.svc.CloseNote(ctx, uuid.New()), apperr.ErrNotFound)
}
