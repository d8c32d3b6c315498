package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/cache"
	"github.com/vaysari11/Final-supernova/internal/clip"
	"github.com/vaysari11/Final-supernova/internal/config"
	"github.com/vaysari11/Final-supernova/internal/extract"
	"github.com/vaysari11/Final-supernova/internal/gemini"
	"github.com/vaysari11/Final-supernova/internal/library"
	"github.com/vaysari11/Final-supernova/internal/metrics"
	"github.com/vaysari11/Final-supernova/internal/studio"
	"github.com/vaysari11/Final-supernova/internal/synth"
)

var errNoAPIKey = errors.New("set GEMINI_API_KEY (or API_KEY) to use Gemini")

// app holds the pieces every command shares.
type app struct {
	cfg     config.Config
	project *studio.Project
	gemini  *gemini.Client
	closers []func() error
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	store, err := a.store()
	if err != nil {
		return nil, err
	}
	lib := library.Open(ctx, store)
	log.Debug("library loaded", "backend", cfg.Library.Backend, "books", lib.Len())

	a.project = studio.NewProject(lib)
	return a, nil
}

func (a *app) store() (library.Store, error) {
	switch a.cfg.Library.Backend {
	case config.BackendRedis:
		r := a.cfg.Library.Redis
		client := redis.NewClient(&redis.Options{Addr: r.Addr, Password: r.Password, DB: r.DB})
		a.closers = append(a.closers, client.Close)
		return library.NewRedisStore(client, library.WithPrefix(r.Prefix)), nil
	case config.BackendMemory:
		return library.NewMemoryStore(), nil
	default:
		return library.NewFileStore(a.cfg.Library.Path), nil
	}
}

func (a *app) format() audio.PCMFormat {
	return audio.PCMFormat{SampleRate: a.cfg.Synthesis.SampleRate, Channels: a.cfg.Synthesis.Channels}
}

// studio wires synthesis, extraction and merging. Without an API key only
// --offline narration is available.
func (a *app) studio(m *metrics.Metrics, opts ...studio.Option) (*studio.Studio, error) {
	s := a.cfg.Synthesis

	var (
		synthesizer synth.Synthesizer
		model       = s.Model
	)
	switch {
	case offline:
		synthesizer = synth.NewMock()
		model = "offline"
	case secrets.Key() == "":
		return nil, errNoAPIKey
	default:
		synthesizer = synth.NewLimited(synth.NewGemini(a.client(), s.Model, a.format()), s.RequestsPerMinute)
	}

	if a.cfg.Cache.Enabled {
		c, err := a.clipCache()
		if err != nil {
			return nil, err
		}
		synthesizer = synth.NewCached(synthesizer, c, model)
	}

	blobs := cache.NewBlobStore()
	fetcher := clip.NewFetcher(
		clip.DefaultResolver(blobs, &http.Client{Timeout: s.Timeout}),
		clip.WAVDecoder{Raw: a.format()},
		clip.WithConcurrency(2*s.Concurrency),
	)

	opts = append([]studio.Option{
		studio.WithConcurrency(s.Concurrency),
		studio.WithExtractor(a.extractor()),
	}, opts...)
	if m != nil {
		opts = append(opts, studio.WithMetrics(m))
	}
	return studio.New(a.project, synthesizer, blobs, clip.NewMerger(fetcher), opts...), nil
}

func (a *app) client() *gemini.Client {
	if a.gemini == nil {
		opts := []gemini.Option{gemini.WithTimeout(a.cfg.Synthesis.Timeout)}
		if a.cfg.Synthesis.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(a.cfg.Synthesis.BaseURL))
		}
		a.gemini = gemini.NewClient(secrets.Key(), opts...)
	}
	return a.gemini
}

// extractor reads text and markdown locally and scans through Gemini. With
// no key, or --offline, scans are refused.
func (a *app) extractor() *extract.Mux {
	if offline || secrets.Key() == "" {
		return extract.NewMux(nil)
	}
	return extract.NewMux(extract.NewGemini(a.client(), a.cfg.Extraction.Model))
}

func (a *app) clipCache() (*cache.Tiered, error) {
	c := a.cfg.Cache
	cc := cache.Config{
		MemoryCapacity:   int64(c.MemoryMB) << 20,
		DiskCapacity:     int64(c.MaxSizeMB) << 20,
		CompressionLevel: c.CompressionLevel,
		TTL:              c.TTL,
	}
	if c.MaxSizeMB > 0 {
		cc.DiskPath = c.Dir
	}
	t, err := cache.NewTiered(cc)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, t.Close)
	return t, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
