package player

import (
	"errors"
	"testing"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

func TestPlayable(t *testing.T) {
	device := audio.PCMFormat{SampleRate: 24000, Channels: 1}

	if err := playable(audio.NewBuffer(1, 24000, 10), device); err != nil {
		t.Errorf("matching buffer: %v", err)
	}
	if err := playable(audio.NewBuffer(2, 24000, 10), device); !errors.Is(err, audio.ErrIncompatibleFormats) {
		t.Errorf("stereo on mono device = %v", err)
	}
	if err := playable(audio.NewBuffer(1, 44100, 10), device); !errors.Is(err, audio.ErrIncompatibleFormats) {
		t.Errorf("rate mismatch = %v", err)
	}
}
