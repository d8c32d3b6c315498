package clip

import (
	"bytes"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/go-audio/wav"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

// Decoder turns a clip payload into a sample buffer.
type Decoder interface {
	Decode(p Payload) (*audio.Buffer, error)
}

// WAVDecoder decodes RIFF/WAVE payloads of any integer bit depth. Payloads
// labelled as raw linear PCM (audio/L16, audio/pcm) are decoded as s16le
// using the rate and channels parameters of the media type, or Raw when
// those are absent.
type WAVDecoder struct {
	Raw audio.PCMFormat
}

func (d WAVDecoder) Decode(p Payload) (*audio.Buffer, error) {
	if len(p.Data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecodeFailed)
	}
	if f, ok := d.rawFormat(p.MediaType); ok {
		buf, err := audio.DecodePCM(p.Data, f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		return buf, nil
	}
	return decodeWAV(p.Data)
}

func (d WAVDecoder) rawFormat(mediaType string) (audio.PCMFormat, bool) {
	if mediaType == "" {
		return audio.PCMFormat{}, false
	}
	mt, params, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return audio.PCMFormat{}, false
	}
	switch strings.ToLower(mt) {
	case "audio/l16", "audio/pcm":
	default:
		return audio.PCMFormat{}, false
	}

	f := d.Raw
	if v, err := strconv.Atoi(params["rate"]); err == nil {
		f.SampleRate = v
	}
	if v, err := strconv.Atoi(params["channels"]); err == nil {
		f.Channels = v
	}
	if f.Channels == 0 {
		f.Channels = 1
	}
	return f, true
}

func decodeWAV(data []byte) (*audio.Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM WAV file", ErrDecodeFailed)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading PCM data: %v", ErrDecodeFailed, err)
	}

	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	if channels <= 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels @ %d Hz", ErrDecodeFailed, channels, dec.SampleRate)
	}
	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrDecodeFailed, depth)
	}

	// unsigned for 8-bit, signed otherwise
	var offset float64
	scale := float64(int64(1) << (depth - 1))
	if depth == 8 {
		offset = 128
	}

	frames := len(pcm.Data) / channels
	buf := audio.NewBuffer(channels, int(dec.SampleRate), frames)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			buf.Data[c][i] = float32((float64(pcm.Data[i*channels+c]) - offset) / scale)
		}
	}
	return buf, nil
}
