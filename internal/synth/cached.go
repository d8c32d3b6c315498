package synth

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/cache"
)

// Cached serves repeated narrations of the same text and voice from a cache.
type Cached struct {
	next  Synthesizer
	cache cache.Cache
	model string
}

// NewCached wraps next. model scopes cache keys so clips from different
// models never collide.
func NewCached(next Synthesizer, c cache.Cache, model string) *Cached {
	return &Cached{next: next, cache: c, model: model}
}

func (c *Cached) Format() audio.PCMFormat { return c.next.Format() }

func (c *Cached) Synthesize(ctx context.Context, text string, voice book.Voice) ([]byte, error) {
	key := cache.Key(c.model, string(voice), text)
	if pcm, ok := c.cache.Get(key); ok {
		log.Debug("clip cache hit", "voice", voice, "bytes", len(pcm))
		return pcm, nil
	}

	pcm, err := c.next.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, pcm); err != nil {
		log.Warn("failed to cache clip", "err", err)
	}
	return pcm, nil
}
