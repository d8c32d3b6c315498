package clip

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

// DefaultConcurrency bounds parallel fetches in FetchAll.
const DefaultConcurrency = 8

// Fetcher retrieves and decodes clips.
type Fetcher struct {
	resolver    Resolver
	decoder     Decoder
	concurrency int
	logger      *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithConcurrency bounds in-flight fetches; n <= 0 means unbounded.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) { f.concurrency = n }
}

// WithLogger sets the fetcher's logger.
func WithLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

func NewFetcher(r Resolver, d Decoder, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		resolver:    r,
		decoder:     d,
		concurrency: DefaultConcurrency,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves and decodes one handle.
func (f *Fetcher) Fetch(ctx context.Context, handle string) (*audio.Buffer, error) {
	p, err := f.resolver.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	buf, err := f.decoder.Decode(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", handle, err)
	}
	f.logger.Debug("fetched clip", "handle", handle, "frames", buf.Frames(), "rate", buf.SampleRate)
	return buf, nil
}

// FetchAll fetches every handle concurrently. The result is in input order.
// The first failure cancels the remaining fetches and is returned.
func (f *Fetcher) FetchAll(ctx context.Context, handles []string) ([]*audio.Buffer, error) {
	out := make([]*audio.Buffer, len(handles))

	g, ctx := errgroup.WithContext(ctx)
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}
	for i, h := range handles {
		g.Go(func() error {
			buf, err := f.Fetch(ctx, h)
			if err != nil {
				return err
			}
			out[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
