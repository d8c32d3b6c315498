package audio

import "errors"

var (
	// ErrMalformedAudio is returned for PCM data or buffers that cannot be
	// interpreted as audio.
	ErrMalformedAudio = errors.New("malformed audio data")

	// ErrEmptyInput is returned when merging zero buffers.
	ErrEmptyInput = errors.New("nothing to merge")

	// ErrIncompatibleFormats is returned when merge inputs differ in channel
	// count or sample rate.
	ErrIncompatibleFormats = errors.New("incompatible audio formats")
)
