//go:build nocgo

package player

import (
	"context"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

// Player is a stub for builds without cgo.
type Player struct {
	format audio.PCMFormat
}

// New always fails with ErrUnavailable.
func New(f audio.PCMFormat) (*Player, error) {
	return nil, ErrUnavailable
}

func (p *Player) Format() audio.PCMFormat { return p.format }

func (p *Player) Play(ctx context.Context, b *audio.Buffer) error {
	if err := playable(b, p.format); err != nil {
		return err
	}
	return ErrUnavailable
}

func (p *Player) Close() error { return nil }
