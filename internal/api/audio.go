package api

import (
	"net/http"

	"github.com/google/uuid"
)

// RecordingState handles GET /api/recording.
func (h *Handler) RecordingState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Recording(r.Context()))
}

// StartRecording handles POST /api/recording/start.
//
//	@Summary		Start recording a voice note
//	@Tags			audio
//	@Produce		json
//	@Success		200	{object}	noteservice.RecordingState
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recording/start [post]
func (h *Handler) StartRecording(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.StartRecording(r.Context())
	if err != nil {
		writeError(w, "start recording", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// StopRecording handles POST /api/recording/stop. The recording is attached
// to the named note when anything usable was captured.
//
//	@Summary		Stop recording and attach it to a note
//	@Tags			audio
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StopRecordingRequest	true	"Target note"
//	@Success		200		{object}	StopRecordingResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recording/stop [post]
func (h *Handler) StopRecording(w http.ResponseWriter, r *http.Request) {
	var req StopRecordingRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	n, attached, err := h.svc.StopRecording(r.Context(), uuid.MustParse(req.NoteID))
	if err != nil {
		writeError(w, "stop recording", err)
		return
	}
	writeJSON(w, http.StatusOK, StopRecordingResponse{Attached: attached, Note: n})
}

// CancelRecording handles POST /api/recording/cancel.
func (h *Handler) CancelRecording(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CancelRecording(r.Context()))
}

// PlaybackState handles GET /api/playback.
func (h *Handler) PlaybackState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Playback(r.Context()))
}

// TogglePlayback handles POST /api/playback/toggle.
func (h *Handler) TogglePlayback(w http.ResponseWriter, r *http.Request) {
	var req TogglePlaybackRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	st, err := h.svc.TogglePlayback(r.Context(), uuid.MustParse(req.NoteID), *req.Index)
	if err != nil {
		writeError(w, "toggle playback", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// StopPlayback handles POST /api/playback/stop.
func (h *Handler) StopPlayback(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.StopPlayback(r.Context()))
}
