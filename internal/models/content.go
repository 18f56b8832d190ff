// Package models defines the domain types for tonote.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/starford/tonote/internal/apperr"
)

// previewLimit is the maximum number of characters (runes) in a text preview.
const previewLimit = 100

// Kind discriminates the ContentItem variants.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindVoice
)

// String returns the variant name: "Text", "Image" or "Voice".
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindVoice:
		return "Voice"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ContentItem is one unit of note content: text, an image, or a voice recording.
// It is a value type; once constructed it never changes. Byte payloads returned
// by accessors must not be modified.
type ContentItem struct {
	kind     Kind
	text     string
	data     []byte
	duration float64
}

// TextItem returns a Text content item.
func TextItem(content string) ContentItem {
	return ContentItem{kind: KindText, text: content}
}

// ImageItem returns an Image content item holding a copy of data.
func ImageItem(data []byte) ContentItem {
	return ContentItem{kind: KindImage, data: cloneBytes(data)}
}

// VoiceItem returns a Voice content item holding a copy of data.
// Negative, NaN and infinite durations are clamped to zero.
func VoiceItem(data []byte, duration float64) ContentItem {
	return ContentItem{kind: KindVoice, data: cloneBytes(data), duration: clampDuration(duration)}
}

// Kind returns the active variant.
func (c ContentItem) Kind() Kind { return c.kind }

// VariantName returns "Text", "Image" or "Voice".
func (c ContentItem) VariantName() string { return c.kind.String() }

// Text returns the text content when c is a Text item.
func (c ContentItem) Text() (string, bool) {
	if c.kind != KindText {
		return "", false
	}
	return c.text, true
}

// ImageData returns the image bytes when c is an Image item.
func (c ContentItem) ImageData() ([]byte, bool) {
	if c.kind != KindImage {
		return nil, false
	}
	return c.data, true
}

// Voice returns the recording bytes and duration in seconds when c is a Voice item.
func (c ContentItem) Voice() ([]byte, float64, bool) {
	if c.kind != KindVoice {
		return nil, 0, false
	}
	return c.data, c.duration, true
}

// Data returns the binary payload of an Image or Voice item.
func (c ContentItem) Data() ([]byte, bool) {
	if c.kind == KindText {
		return nil, false
	}
	return c.data, true
}

// PreviewText returns the first 100 characters of a non-empty Text item.
// Other variants and empty text have no preview.
func (c ContentItem) PreviewText() (string, bool) {
	if c.kind != KindText || c.text == "" {
		return "", false
	}
	return truncateRunes(c.text, previewLimit), true
}

// Equal reports whether c and o hold the same variant and payload.
func (c ContentItem) Equal(o ContentItem) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindText:
		return c.text == o.text
	case KindImage:
		return bytes.Equal(c.data, o.data)
	case KindVoice:
		return c.duration == o.duration && bytes.Equal(c.data, o.data)
	}
	return false
}

type textWire struct {
	Text string `json:"text"`
}

type imageWire struct {
	ImageData []byte `json:"imageData"`
}

type voiceWire struct {
	VoiceRecording voicePayload `json:"voiceRecording"`
}

type voicePayload struct {
	Data     []byte  `json:"data"`
	Duration float64 `json:"duration"`
}

// MarshalJSON encodes c as a single-key object keyed by its variant.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindText:
		return json.Marshal(textWire{Text: c.text})
	case KindImage:
		return json.Marshal(imageWire{ImageData: nonNilBytes(c.data)})
	case KindVoice:
		return json.Marshal(voiceWire{VoiceRecording: voicePayload{
			Data:     nonNilBytes(c.data),
			Duration: c.duration,
		}})
	}
	return nil, fmt.Errorf("models: encode content item: unknown kind %d", int(c.kind))
}

// UnmarshalJSON decodes a content item record.
//
// Candidate keys are tried in the fixed order "text", "imageData",
// "voiceRecording"; the first one present with a usable value wins. A null
// value counts as absent. A record matching none of them fails with
// apperr.ErrUnparseableContent.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: decode content item: %w: %v", apperr.ErrUnparseableContent, err)
	}

	if v, ok := raw["text"]; ok && !isNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			*c = TextItem(s)
			return nil
		}
	}

	if v, ok := raw["imageData"]; ok && !isNull(v) {
		var b []byte
		if err := json.Unmarshal(v, &b); err == nil {
			*c = ContentItem{kind: KindImage, data: nonNilBytes(b)}
			return nil
		}
	}

	if v, ok := raw["voiceRecording"]; ok && !isNull(v) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(v, &fields); err == nil {
			return c.decodeVoice(fields)
		}
	}

	return fmt.Errorf("models: decode content item: %w: no known key", apperr.ErrUnparseableContent)
}

// decodeVoice requires both "data" and "duration" once a voiceRecording
// object has been selected.
func (c *ContentItem) decodeVoice(fields map[string]json.RawMessage) error {
	rawData, ok := fields["data"]
	if !ok || isNull(rawData) {
		return fmt.Errorf("models: decode voice recording: %w: missing data", apperr.ErrUnparseableContent)
	}
	rawDur, ok := fields["duration"]
	if !ok || isNull(rawDur) {
		return fmt.Errorf("models: decode voice recording: %w: missing duration", apperr.ErrUnparseableContent)
	}
	var b []byte
	if err := json.Unmarshal(rawData, &b); err != nil {
		return fmt.Errorf("models: decode voice recording: %w: %v", apperr.ErrUnparseableContent, err)
	}
	var d float64
	if err := json.Unmarshal(rawDur, &d); err != nil {
		return fmt.Errorf("models: decode voice recording: %w: %v", apperr.ErrUnparseableContent, err)
	}
	*c = ContentItem{kind: KindVoice, data: nonNilBytes(b), duration: clampDuration(d)}
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

func clampDuration(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

func truncateRunes(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
