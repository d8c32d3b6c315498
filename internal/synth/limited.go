package synth

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
)

// Limited spaces calls to next to at most requestsPerMinute.
type Limited struct {
	next    Synthesizer
	limiter *rate.Limiter
}

// NewLimited wraps next. A non-positive requestsPerMinute disables limiting.
func NewLimited(next Synthesizer, requestsPerMinute int) *Limited {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &Limited{next: next, limiter: rate.NewLimiter(limit, 1)}
}

func (l *Limited) Format() audio.PCMFormat { return l.next.Format() }

func (l *Limited) Synthesize(ctx context.Context, text string, voice book.Voice) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.next.Synthesize(ctx, text, voice)
}
