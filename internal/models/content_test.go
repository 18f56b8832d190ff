package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/starford/tonote/internal/apperr"
)

func TestVariantName(t *testing.T) {
	cases := []struct {
		item ContentItem
		want string
	}{
		{TextItem("x"), "Text"},
		{ImageItem([]byte{1}), "Image"},
		{VoiceItem([]byte{1}, 1), "Voice"},
	}
	for _, c := range cases {
		if got := c.item.VariantName(); got != c.want {
			t.Errorf("VariantName = %q, want %q", got, c.want)
		}
	}
}

func TestPreviewText(t *testing.T) {
	if _, ok := TextItem("").PreviewText(); ok {
		t.Error("empty text should have no preview")
	}
	if _, ok := ImageItem([]byte{1}).PreviewText(); ok {
		t.Error("image should have no preview")
	}
	if _, ok := VoiceItem(nil, 1).PreviewText(); ok {
		t.Error("voice should have no preview")
	}

	got, ok := TextItem("hello").PreviewText()
	if !ok || got != "hello" {
		t.Errorf("preview = %q, %v", got, ok)
	}

	long := strings.Repeat("a", 150)
	got, _ = TextItem(long).PreviewText()
	if got != strings.Repeat("a", 100) {
		t.Errorf("len(preview) = %d, want 100", len(got))
	}
}

func TestPreviewTextTruncatesRunesNotBytes(t *testing.T) {
	long := strings.Repeat("é", 150)
	got, _ := TextItem(long).PreviewText()
	if n := len([]rune(got)); n != 100 {
		t.Errorf("rune count = %d, want 100", n)
	}
	if got != strings.Repeat("é", 100) {
		t.Errorf("preview split a code point: %q", got)
	}
}

func TestContentItemRoundTrip(t *testing.T) {
	cases := []ContentItem{
		TextItem(""),
		TextItem("hello, world"),
		ImageItem(nil),
		ImageItem([]byte{}),
		ImageItem([]byte{0xff, 0xd8, 0xff}),
		VoiceItem(nil, 0),
		VoiceItem([]byte("RIFF....WAVE"), 2.5),
	}
	for _, in := range cases {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", in.VariantName(), err)
		}
		var out ContentItem
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if !out.Equal(in) {
			t.Errorf("round trip of %s changed the item: %s", in.VariantName(), data)
		}
	}
}

func TestContentItemWireShape(t *testing.T) {
	cases := []struct {
		item ContentItem
		want string
	}{
		{TextItem("hi"), `{"text":"hi"}`},
		{ImageItem([]byte{1, 2}), `{"imageData":"AQI="}`},
		{ImageItem(nil), `{"imageData":""}`},
		{VoiceItem([]byte{1, 2}, 1.5), `{"voiceRecording":{"data":"AQI=","duration":1.5}}`},
	}
	for _, c := range cases {
		got, err := json.Marshal(c.item)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if string(got) != c.want {
			t.Errorf("wire = %s, want %s", got, c.want)
		}
	}
}

func TestDecodeKeyTrialOrder(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{`{"text":"a","imageData":"AQI="}`, KindText},
		{`{"voiceRecording":{"data":"AQI=","duration":1},"imageData":"AQI="}`, KindImage},
		{`{"voiceRecording":{"data":"AQI=","duration":1},"text":"b"}`, KindText},
		{`{"text":null,"imageData":"AQI="}`, KindImage},
		{`{"text":42,"voiceRecording":{"data":"","duration":0}}`, KindVoice},
	}
	for _, c := range cases {
		var item ContentItem
		if err := json.Unmarshal([]byte(c.in), &item); err != nil {
			t.Fatalf("Unmarshal(%s): %v", c.in, err)
		}
		if item.Kind() != c.want {
			t.Errorf("Unmarshal(%s) kind = %s, want %s", c.in, item.Kind(), c.want)
		}
	}
}

func TestDecodeCorruptedRecord(t *testing.T) {
	cases := []string{
		`{}`,
		`{"unknown":"x"}`,
		`{"text":null}`,
		`{"voiceRecording":{"data":"AQI="}}`,
		`{"voiceRecording":{"duration":2}}`,
		`{"voiceRecording":"nope"}`,
		`[]`,
		`"text"`,
	}
	for _, in := range cases {
		var item ContentItem
		err := json.Unmarshal([]byte(in), &item)
		if !errors.Is(err, apperr.ErrUnparseableContent) {
			t.Errorf("Unmarshal(%s) err = %v, want ErrUnparseableContent", in, err)
		}
	}
}

func TestVoiceDurationNeverNegative(t *testing.T) {
	if _, d, _ := VoiceItem(nil, -3).Voice(); d != 0 {
		t.Errorf("duration = %v, want 0", d)
	}

	var item ContentItem
	if err := json.Unmarshal([]byte(`{"voiceRecording":{"data":"","duration":-1.5}}`), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, d, _ := item.Voice(); d != 0 {
		t.Errorf("decoded duration = %v, want 0", d)
	}
}

func TestItemCopiesCallerBytes(t *testing.T) {
	buf := []byte{1, 2, 3}
	item := ImageItem(buf)
	buf[0] = 9
	got, _ := item.ImageData()
	if got[0] != 1 {
		t.Error("ImageItem must not alias the caller's slice")
	}
}

func TestAccessorsRejectOtherVariants(t *testing.T) {
	text := TextItem("x")
	if _, ok := text.ImageData(); ok {
		t.Error("Text should not expose image data")
	}
	if _, _, ok := text.Voice(); ok {
		t.Error("Text should not expose voice data")
	}
	if _, ok := text.Data(); ok {
		t.Error("Text has no binary payload")
	}
	if _, ok := ImageItem(nil).Text(); ok {
		t.Error("Image should not expose text")
	}
}
