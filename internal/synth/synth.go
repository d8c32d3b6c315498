// Package synth turns paragraph text into narrated PCM audio.
package synth

import (
	"context"
	"errors"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
)

var (
	// ErrSynthesisFailed is returned when the speech service produces no audio.
	ErrSynthesisFailed = errors.New("synthesis failed")

	// ErrRateLimited is returned when the speech service rejects a call for quota.
	ErrRateLimited = errors.New("synthesis rate limited")
)

// Synthesizer narrates text with a voice and returns raw s16le PCM in the
// format reported by Format.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice book.Voice) ([]byte, error)
	Format() audio.PCMFormat
}

// DefaultFormat is the native output of the Gemini speech models.
var DefaultFormat = audio.PCMFormat{SampleRate: 24000, Channels: 1}
