// Package player plays finished recordings on the default output device.
// Builds tagged nocgo get a stub whose New always fails.
package player

import (
	"errors"
	"fmt"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

var (
	// ErrClosed is returned by Play after Close.
	ErrClosed = errors.New("player is closed")

	// ErrUnavailable is returned by New when the build has no audio output.
	ErrUnavailable = errors.New("audio playback not available in this build")
)

func playable(b *audio.Buffer, f audio.PCMFormat) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.SampleRate != f.SampleRate || b.Channels != f.Channels {
		return fmt.Errorf("%w: %d Hz x %d cannot play on a %d Hz x %d device",
			audio.ErrIncompatibleFormats, b.SampleRate, b.Channels, f.SampleRate, f.Channels)
	}
	return nil
}
