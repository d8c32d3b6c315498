package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"golang.org/x/term"

	"github.com/vaysari11/Final-supernova/internal/config"
)

func getLogFilePath() (string, error) {
	return gap.NewScope(gap.User, config.AppName).LogPath(config.AppName + ".log")
}

// setupLog writes logs to stderr, and additionally to the log file named by
// SUPERNOVA_LOG_FILE ("1" selects the default location).
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(!term.IsTerminal(int(os.Stderr.Fd())))
	log.SetLevel(log.InfoLevel)

	path := os.Getenv("SUPERNOVA_LOG_FILE")
	if path == "" {
		return func() error { return nil }, nil
	}
	if path == "1" {
		var err error
		if path, err = getLogFilePath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	log.SetReportTimestamp(true)
	return f.Close, nil
}
