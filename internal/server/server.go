// Package server exposes the studio over HTTP.
package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaysari11/Final-supernova/internal/metrics"
	"github.com/vaysari11/Final-supernova/internal/studio"
)

// MaxUploadSize bounds scanned documents and request bodies.
const MaxUploadSize = 32 << 20

// Server routes HTTP requests to a studio.
type Server struct {
	app     *fiber.App
	studio  *studio.Studio
	metrics *metrics.Metrics
	logger  *log.Logger
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the fiber app for st.
func New(st *studio.Studio, opts ...Option) *Server {
	s := &Server{studio: st, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "supernova",
		BodyLimit:             MaxUploadSize,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
		ReadTimeout:           time.Minute,
	})
	s.app.Use(s.observe)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	s.app.Get("/voices", s.listVoices)

	s.app.Get("/books", s.listBooks)
	s.app.Post("/books", s.createBook)
	s.app.Get("/books/:id", s.getBook)
	s.app.Patch("/books/:id", s.editBook)
	s.app.Delete("/books/:id", s.deleteBook)
	s.app.Post("/books/:id/paragraphs", s.appendParagraphs)
	s.app.Post("/books/:id/open", s.openBook)

	s.app.Get("/current", s.currentBook)
	s.app.Post("/narrate", s.narrateAll)
	s.app.Post("/paragraphs/:id/narrate", s.narrate)
	s.app.Get("/audio/:handle", s.audio)
	s.app.Get("/download", s.download)

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
