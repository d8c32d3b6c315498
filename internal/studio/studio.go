package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/cache"
	"github.com/vaysari11/Final-supernova/internal/clip"
	"github.com/vaysari11/Final-supernova/internal/extract"
	"github.com/vaysari11/Final-supernova/internal/metrics"
	"github.com/vaysari11/Final-supernova/internal/synth"
)

// DefaultConcurrency bounds NarrateAll.
const DefaultConcurrency = 4

// Studio narrates paragraphs of the open project and merges the results.
type Studio struct {
	project *Project
	synth   synth.Synthesizer
	blobs   *cache.BlobStore
	merger  *clip.Merger
	reader  extract.Extractor

	sem      *semaphore.Weighted
	metrics  *metrics.Metrics
	observer Observer
	logger   *log.Logger
}

// Option configures a Studio.
type Option func(*Studio)

// WithConcurrency bounds how many paragraphs NarrateAll synthesizes at once.
func WithConcurrency(n int) Option {
	return func(s *Studio) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithExtractor sets how documents are turned into paragraphs. The default
// reads plain text and markdown.
func WithExtractor(e extract.Extractor) Option {
	return func(s *Studio) { s.reader = e }
}

// WithMetrics records narration and merge metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Studio) { s.metrics = m }
}

// WithObserver receives every paragraph status change.
func WithObserver(o Observer) Option {
	return func(s *Studio) { s.observer = o }
}

// WithLogger sets the studio's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Studio) { s.logger = l }
}

// New creates a studio. Clips are registered in blobs and merged through a
// fetcher that resolves blob handles from the same store.
func New(project *Project, synthesizer synth.Synthesizer, blobs *cache.BlobStore, merger *clip.Merger, opts ...Option) *Studio {
	s := &Studio{
		project: project,
		synth:   synthesizer,
		blobs:   blobs,
		merger:  merger,
		reader:  extract.NewMux(nil),
		sem:     semaphore.NewWeighted(DefaultConcurrency),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Project returns the studio's project context.
func (s *Studio) Project() *Project { return s.project }

// Blobs returns the store holding narrated clips.
func (s *Studio) Blobs() *cache.BlobStore { return s.blobs }

// Narrate synthesizes one paragraph of the current book. If the paragraph is
// already being narrated it returns ErrAlreadyProcessing without calling the
// speech service. On failure the paragraph returns to idle with its
// previous audio intact.
func (s *Studio) Narrate(ctx context.Context, paragraphID string) error {
	b, para, err := s.project.begin(paragraphID)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessing) {
			s.count(metrics.OutcomeSkipped)
			s.logger.Debug("narration already in flight", "paragraph", paragraphID)
		}
		return err
	}
	s.emit(Event{BookID: b.ID, ParagraphID: paragraphID, From: para.Status, To: book.StatusProcessing})

	start := time.Now()
	if s.metrics != nil {
		s.metrics.InFlight.Inc()
		defer s.metrics.InFlight.Dec()
	}

	handle, frames, err := s.synthesize(ctx, para.Text, b.Voice)
	if err != nil {
		serr := newError(err, ComponentSynthesis, "narrate")
		serr.BookID, serr.ParagraphID = b.ID, paragraphID

		s.emit(Event{BookID: b.ID, ParagraphID: paragraphID, From: book.StatusProcessing, To: book.StatusError, Err: serr})
		if _, ferr := s.project.finish(ctx, b.ID, paragraphID, ""); ferr != nil {
			s.logger.Warn("failed to reset paragraph", "paragraph", paragraphID, "err", ferr)
		}
		s.emit(Event{BookID: b.ID, ParagraphID: paragraphID, From: book.StatusError, To: book.StatusIdle})

		if errors.Is(err, synth.ErrRateLimited) {
			s.count(metrics.OutcomeRateLimited)
		} else {
			s.count(metrics.OutcomeFailed)
		}
		s.logger.Error("narration failed", "book", b.ID, "paragraph", paragraphID, "err", err)
		return serr
	}

	previous, err := s.project.finish(ctx, b.ID, paragraphID, handle)
	if err != nil {
		s.blobs.Revoke(handle)
		return fmt.Errorf("failed to attach clip: %w", err)
	}
	if previous != "" && previous != handle && cache.IsBlobHandle(previous) {
		s.blobs.Revoke(previous)
	}
	s.emit(Event{BookID: b.ID, ParagraphID: paragraphID, From: book.StatusProcessing, To: book.StatusIdle})

	s.count(metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.SynthesisDuration.Observe(time.Since(start).Seconds())
		s.metrics.ClipSeconds.Observe(float64(frames) / float64(s.synth.Format().SampleRate))
	}
	s.logger.Info("paragraph narrated", "paragraph", paragraphID, "frames", frames, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Studio) synthesize(ctx context.Context, text string, voice book.Voice) (string, int, error) {
	pcm, err := s.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return "", 0, err
	}

	format := s.synth.Format()
	buf, err := audio.DecodePCM(pcm, format)
	if err != nil {
		return "", 0, err
	}
	if n := format.Trailing(len(pcm)); n > 0 {
		s.logger.Debug("dropped partial PCM frame", "bytes", n)
	}

	wav, err := audio.EncodeWAV(buf)
	if err != nil {
		return "", 0, err
	}
	return s.blobs.Register(wav, "audio/wav"), buf.Frames(), nil
}

// Extract reads paragraphs from a document with the configured extractor.
func (s *Studio) Extract(ctx context.Context, data []byte, mediaType string) (extract.Result, error) {
	res, err := s.reader.Extract(ctx, data, mediaType)
	if err != nil {
		s.logger.Error("extraction failed", "type", mediaType, "bytes", len(data), "err", err)
		return extract.Result{}, newError(err, ComponentExtraction, "extract")
	}
	s.logger.Info("document read", "type", mediaType, "paragraphs", len(res.Paragraphs))
	return res, nil
}

// NarrateAll narrates the given paragraphs concurrently, bounded by the
// studio's concurrency. With no IDs it narrates every paragraph of the
// current book that has no audio yet. Paragraphs already in flight are
// skipped. The returned error joins every failure.
func (s *Studio) NarrateAll(ctx context.Context, paragraphIDs ...string) error {
	if len(paragraphIDs) == 0 {
		b, ok := s.project.Current()
		if !ok {
			return ErrNoProject
		}
		for _, p := range b.Paragraphs {
			if !p.HasAudio() {
				paragraphIDs = append(paragraphIDs, p.ID)
			}
		}
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, id := range paragraphIDs {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.sem.Release(1)

			if err := s.Narrate(ctx, id); err != nil && !errors.Is(err, ErrAlreadyProcessing) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Download is a merged recording of the current book.
type Download struct {
	Name     string
	WAV      []byte
	Buffer   *audio.Buffer
	Frames   int
	Clips    int
	Duration time.Duration
}

// Download merges the audio of every narrated paragraph of the current book,
// in paragraph order. Paragraphs without audio are left out.
func (s *Studio) Download(ctx context.Context) (*Download, error) {
	b, ok := s.project.Current()
	if !ok {
		return nil, ErrNoProject
	}

	handles, err := book.Handles(b)
	if err != nil {
		s.mergeOutcome(metrics.OutcomeSkipped)
		return nil, newError(err, ComponentMerge, "download")
	}

	res, err := s.merger.MergeHandles(ctx, handles)
	if err != nil {
		s.mergeOutcome(metrics.OutcomeFailed)
		s.logger.Error("merge failed", "book", b.ID, "clips", len(handles), "err", err)
		serr := newError(err, ComponentMerge, "download")
		serr.BookID = b.ID
		return nil, serr
	}

	s.mergeOutcome(metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.MergedFrames.Add(float64(res.Buffer.Frames()))
		s.metrics.MergeClips.Observe(float64(len(handles)))
	}
	return &Download{
		Name:     book.DownloadFilename(b.Title),
		WAV:      res.WAV,
		Buffer:   res.Buffer,
		Frames:   res.Buffer.Frames(),
		Clips:    len(handles),
		Duration: res.Buffer.Duration(),
	}, nil
}

// Export merges the current book and hands the file to saver.
func (s *Studio) Export(ctx context.Context, saver Saver) (*Download, error) {
	d, err := s.Download(ctx)
	if err != nil {
		return nil, err
	}
	if err := saver.Save(ctx, d.Name, d.WAV); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", d.Name, err)
	}
	return d, nil
}

func (s *Studio) emit(e Event) {
	if s.observer != nil {
		s.observer(e)
	}
}

func (s *Studio) count(outcome string) {
	if s.metrics != nil {
		s.metrics.SynthesisAttempts.WithLabelValues(outcome).Inc()
	}
}

func (s *Studio) mergeOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.Merges.WithLabelValues(outcome).Inc()
	}
}
