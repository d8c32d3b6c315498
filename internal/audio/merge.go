package audio

import "fmt"

// Merge concatenates buffers in order into one new buffer. All inputs must
// share the channel count and sample rate of the first one.
func Merge(buffers []*Buffer) (*Buffer, error) {
	if len(buffers) == 0 {
		return nil, ErrEmptyInput
	}

	first := buffers[0]
	total := 0
	for i, b := range buffers {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		if !b.SameFormat(first) {
			return nil, fmt.Errorf("%w: clip %d is %d ch @ %d Hz, clip 0 is %d ch @ %d Hz",
				ErrIncompatibleFormats, i, b.Channels, b.SampleRate, first.Channels, first.SampleRate)
		}
		total += b.Frames()
	}

	out := NewBuffer(first.Channels, first.SampleRate, total)
	offset := 0
	for _, b := range buffers {
		for c := 0; c < out.Channels; c++ {
			copy(out.Data[c][offset:], b.Data[c])
		}
		offset += b.Frames()
	}
	return out, nil
}
