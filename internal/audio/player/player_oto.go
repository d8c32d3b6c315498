//go:build !nocgo

package player

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

// Player plays buffers on the default output device. The device is opened
// once, in the format given to New; oto allows a single context per
// process.
type Player struct {
	context *oto.Context
	format  audio.PCMFormat

	mu     sync.Mutex
	closed bool
}

// New opens the output device.
func New(f audio.PCMFormat) (*Player, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	return &Player{context: ctx, format: f}, nil
}

// Format returns the device format.
func (p *Player) Format() audio.PCMFormat { return p.format }

// Play plays b to the end, or until ctx is done.
func (p *Player) Play(ctx context.Context, b *audio.Buffer) error {
	if err := playable(b, p.format); err != nil {
		return err
	}
	pcm, err := audio.EncodePCM(b)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	// pcm stays referenced by the reader until playback ends
	player := p.context.NewPlayer(bytes.NewReader(pcm))
	p.mu.Unlock()
	defer player.Close() //nolint:errcheck

	player.Play()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-tick.C:
		}
	}
	return player.Err()
}

// Close stops accepting new playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
