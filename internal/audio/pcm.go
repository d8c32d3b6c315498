package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	// BitDepth is the only integer sample width the pipeline reads and writes.
	BitDepth = 16

	bytesPerSample = BitDepth / 8

	// int16 scale factors; the negative range is one step wider.
	negScale = 32768.0
	posScale = 32767.0
)

// PCMFormat describes interleaved signed 16-bit little-endian PCM.
type PCMFormat struct {
	SampleRate int
	Channels   int
}

// FrameSize returns the number of bytes in one interleaved frame.
func (f PCMFormat) FrameSize() int {
	return bytesPerSample * f.Channels
}

// Trailing returns how many bytes at the end of an n-byte payload do not
// form a whole frame and are dropped by DecodePCM.
func (f PCMFormat) Trailing(n int) int {
	if f.Channels <= 0 {
		return n
	}
	return n % f.FrameSize()
}

// Validate checks the format parameters.
func (f PCMFormat) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrMalformedAudio, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrMalformedAudio, f.Channels)
	}
	return nil
}

// DecodePCM converts interleaved s16le samples into a normalized Buffer.
// Each sample is divided by 32768. A trailing partial frame is dropped.
func DecodePCM(data []byte, f PCMFormat) (*Buffer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(data) < f.FrameSize() {
		return nil, fmt.Errorf("%w: %d bytes is less than one %d-channel frame", ErrMalformedAudio, len(data), f.Channels)
	}

	frames := len(data) / f.FrameSize()
	buf := NewBuffer(f.Channels, f.SampleRate, frames)

	pos := 0
	for i := 0; i < frames; i++ {
		for c := 0; c < f.Channels; c++ {
			s := int16(binary.LittleEndian.Uint16(data[pos:]))
			buf.Data[c][i] = float32(float64(s) / negScale)
			pos += bytesPerSample
		}
	}
	return buf, nil
}

// FloatToInt16 clamps s to [-1, 1] and scales it into the int16 range,
// using 32768 for negative values and 32767 for the rest.
func FloatToInt16(s float32) int16 {
	v := float64(s)
	switch {
	case v != v: // NaN
		return 0
	case v < -1:
		v = -1
	case v > 1:
		v = 1
	}
	if v < 0 {
		return int16(v * negScale)
	}
	return int16(v * posScale)
}

// EncodePCM converts a Buffer back into interleaved s16le samples.
func EncodePCM(b *Buffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, b.Frames()*b.Channels*bytesPerSample)
	pos := 0
	for i := 0; i < b.Frames(); i++ {
		for c := 0; c < b.Channels; c++ {
			binary.LittleEndian.PutUint16(out[pos:], uint16(FloatToInt16(b.Data[c][i])))
			pos += bytesPerSample
		}
	}
	return out, nil
}
