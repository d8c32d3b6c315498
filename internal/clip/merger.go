package clip

import (
	"context"
	"fmt"

	"github.com/vaysari11/Final-supernova/internal/audio"
)

// Result is a merged recording.
type Result struct {
	WAV    []byte
	Buffer *audio.Buffer
}

// Merger fetches clips and joins them into one WAV file.
type Merger struct {
	fetcher *Fetcher
}

func NewMerger(f *Fetcher) *Merger {
	return &Merger{fetcher: f}
}

// MergeHandles fetches the handles, concatenates them in order and encodes
// the result. It is always computed from scratch.
func (m *Merger) MergeHandles(ctx context.Context, handles []string) (*Result, error) {
	if len(handles) == 0 {
		return nil, audio.ErrEmptyInput
	}

	buffers, err := m.fetcher.FetchAll(ctx, handles)
	if err != nil {
		return nil, err
	}
	merged, err := audio.Merge(buffers)
	if err != nil {
		return nil, err
	}
	data, err := audio.EncodeWAV(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged audio: %w", err)
	}
	return &Result{WAV: data, Buffer: merged}, nil
}
