package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vaysari11/Final-supernova/internal/metrics"
	"github.com/vaysari11/Final-supernova/internal/server"
	"github.com/vaysari11/Final-supernova/internal/studio"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the studio over HTTP",
	Long:  paragraph(fmt.Sprintf("\n%s the library, narration and downloads over HTTP. Prometheus metrics are served at /metrics.", keyword("Serve"))),
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	m := metrics.New()
	st, err := a.studio(m, studio.WithObserver(func(e studio.Event) {
		log.Debug("paragraph", "book", e.BookID, "id", e.ParagraphID, "from", e.From, "to", e.To)
	}))
	if err != nil {
		return err
	}
	srv := server.New(st, server.WithMetrics(m))

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Server.Addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
