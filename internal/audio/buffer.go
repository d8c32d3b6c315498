package audio

import (
	"fmt"
	"time"
)

// Buffer is a normalized multi-channel sample buffer. Data holds one slice
// per channel, all of the same length, with samples in [-1, 1].
type Buffer struct {
	Channels   int
	SampleRate int
	Data       [][]float32
}

// NewBuffer allocates a zeroed buffer of the given shape.
func NewBuffer(channels, sampleRate, frames int) *Buffer {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}
	return &Buffer{
		Channels:   channels,
		SampleRate: sampleRate,
		Data:       data,
	}
}

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Validate reports whether the buffer is well formed.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrMalformedAudio)
	}
	if b.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrMalformedAudio, b.Channels)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrMalformedAudio, b.SampleRate)
	}
	if len(b.Data) != b.Channels {
		return fmt.Errorf("%w: %d channel slices for %d channels", ErrMalformedAudio, len(b.Data), b.Channels)
	}
	frames := len(b.Data[0])
	for c, ch := range b.Data {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrMalformedAudio, c, len(ch), frames)
		}
	}
	return nil
}

// SameFormat reports whether two buffers share channel count and sample rate.
func (b *Buffer) SameFormat(o *Buffer) bool {
	return b.Channels == o.Channels && b.SampleRate == o.SampleRate
}
