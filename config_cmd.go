package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# where books are kept: file, redis or memory
library:
  backend: "file"
  # .json or .yaml; defaults to the user data directory
  # path: "~/.local/share/supernova/library.json"
  redis:
    addr: "localhost:6379"
    prefix: "supernova"

# synthesized clips, reused when the same text is narrated again
cache:
  enabled: true
  # dir: "~/.cache/supernova"
  memory_mb: 64
  max_size_mb: 512
  # zstd level 1-4, 0 stores clips uncompressed
  compression_level: 3
  ttl: "720h"

synthesis:
  model: "gemini-2.5-flash-preview-tts"
  # Kore, Zephyr, Puck, Charon or Fenrir
  voice: "Kore"
  sample_rate: 24000
  channels: 1
  # paragraphs narrated at once
  concurrency: 4
  # 0 disables the limiter
  requests_per_minute: 10
  timeout: "2m"

extraction:
  model: "gemini-3-flash-preview"

server:
  addr: "127.0.0.1:8080"

# where merged recordings are written
output:
  dir: "."
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the supernova config file",
	Long:    paragraph(fmt.Sprintf("\n%s the supernova config file with $EDITOR. A commented default is written first if the file doesn't exist. The Gemini key is never read from here: set GEMINI_API_KEY or put it in a .env file next to the config.", keyword("Edit"))),
	Example: paragraph("supernova config\nsupernova config --config path/to/supernova.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Supernova", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile writes defaultConfig to configFile unless a file is
// already there.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no config file location")
	}

	switch ext := filepath.Ext(configFile); ext {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("'%s' is not a supported configuration type: use '.yaml' or '.yml'", ext)
	}

	_, err := os.Stat(configFile)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return fmt.Errorf("unable create directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}
