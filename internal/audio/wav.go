package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the size of the canonical RIFF/WAVE header.
const HeaderSize = 44

const formatPCM = 1

// WAVHeader is the canonical 44-byte PCM WAV header.
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * 2
	BlockAlign    uint16 // NumChannels * 2
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // 2 * NumChannels * frames
}

// NewWAVHeader builds the header for a 16-bit PCM stream.
func NewWAVHeader(channels, sampleRate, frames int) WAVHeader {
	blockAlign := uint32(channels * bytesPerSample)
	dataSize := blockAlign * uint32(frames)
	return WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     HeaderSize - 8 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * blockAlign,
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: BitDepth,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// EncodedSize returns the byte length of the WAV file EncodeWAV produces.
func EncodedSize(b *Buffer) int {
	return HeaderSize + b.Channels*bytesPerSample*b.Frames()
}

// EncodeWAV serializes the buffer as a canonical PCM WAV file.
func EncodeWAV(b *Buffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := bytes.NewBuffer(make([]byte, 0, EncodedSize(b)))
	if err := writeWAV(out, b); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteWAV streams the buffer as a canonical PCM WAV file to w.
func WriteWAV(w io.Writer, b *Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := writeWAV(bw, b); err != nil {
		return err
	}
	return bw.Flush()
}

func writeWAV(w io.Writer, b *Buffer) error {
	header := NewWAVHeader(b.Channels, b.SampleRate, b.Frames())
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	frame := make([]byte, b.Channels*bytesPerSample)
	for i := 0; i < b.Frames(); i++ {
		for c := 0; c < b.Channels; c++ {
			binary.LittleEndian.PutUint16(frame[c*bytesPerSample:], uint16(FloatToInt16(b.Data[c][i])))
		}
		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
	}
	return nil
}

// ReadWAVHeader parses and checks the canonical header at the start of data.
func ReadWAVHeader(data []byte) (WAVHeader, error) {
	var h WAVHeader
	if len(data) < HeaderSize {
		return h, fmt.Errorf("%w: WAV data too short: need at least %d bytes, got %d", ErrMalformedAudio, HeaderSize, len(data))
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("%w: failed to read WAV header: %v", ErrMalformedAudio, err)
	}
	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return h, fmt.Errorf("%w: missing RIFF header", ErrMalformedAudio)
	case string(h.Format[:]) != "WAVE":
		return h, fmt.Errorf("%w: missing WAVE format", ErrMalformedAudio)
	case string(h.Subchunk1ID[:]) != "fmt ":
		return h, fmt.Errorf("%w: missing fmt chunk", ErrMalformedAudio)
	case string(h.Subchunk2ID[:]) != "data":
		return h, fmt.Errorf("%w: missing data chunk", ErrMalformedAudio)
	}
	return h, nil
}
