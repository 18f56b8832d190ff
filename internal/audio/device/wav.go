// Package device provides capture and playback devices for the audio
// services: a WAV capture writer fed by a PCM sample source, PortAudio
// adapters, and a clock-driven player for hosts without sound hardware.
package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16
)

// ErrNotWAV is returned when a buffer is not a 16-bit PCM WAV file.
var ErrNotWAV = errors.New("device: not a 16-bit PCM WAV buffer")

// PCM is interleaved signed 16-bit audio.
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Duration returns the playing time of p.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 || p.Channels <= 0 {
		return 0
	}
	frames := len(p.Samples) / p.Channels
	return time.Duration(frames) * time.Second / time.Duration(p.SampleRate)
}

// wavHeader returns a canonical 44-byte RIFF/WAVE header for dataSize bytes of
// 16-bit PCM.
func wavHeader(sampleRate, channels int, dataSize uint32) []byte {
	h := make([]byte, wavHeaderSize)

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(sampleRate*channels*bitsPerSample/8))
	binary.LittleEndian.PutUint16(h[32:34], uint16(channels*bitsPerSample/8))
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)
	return h
}

// EncodeWAV encodes p as a WAV file.
func EncodeWAV(p PCM) []byte {
	out := make([]byte, wavHeaderSize+2*len(p.Samples))
	copy(out, wavHeader(p.SampleRate, p.Channels, uint32(2*len(p.Samples))))
	putSamples(out[wavHeaderSize:], p.Samples)
	return out
}

// DecodeWAV parses a canonical 16-bit PCM WAV buffer. A data chunk shorter
// than its declared size is accepted and truncated to whole samples.
func DecodeWAV(data []byte) (PCM, error) {
	if len(data) < wavHeaderSize ||
		string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" ||
		string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		return PCM{}, ErrNotWAV
	}
	if binary.LittleEndian.Uint16(data[20:22]) != 1 || binary.LittleEndian.Uint16(data[34:36]) != bitsPerSample {
		return PCM{}, ErrNotWAV
	}

	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	if channels == 0 || sampleRate == 0 {
		return PCM{}, fmt.Errorf("%w: zero channels or sample rate", ErrNotWAV)
	}

	body := data[wavHeaderSize:]
	if size := int(binary.LittleEndian.Uint32(data[40:44])); size < len(body) {
		body = body[:size]
	}
	samples := make([]int16, len(body)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(body[i*2:]))
	}
	return PCM{SampleRate: sampleRate, Channels: channels, Samples: samples}, nil
}

func putSamples(dst []byte, samples []int16) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
}
