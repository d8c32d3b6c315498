// Package config holds supernova's settings, read from the config file and
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/vaysari11/Final-supernova/internal/book"
)

// Library backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// AppName scopes config, data and cache directories.
const AppName = "supernova"

// Config contains every supernova setting.
type Config struct {
	Library    LibraryConfig    `mapstructure:"library"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Synthesis  SynthesisConfig  `mapstructure:"synthesis"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Server     ServerConfig     `mapstructure:"server"`
	Output     OutputConfig     `mapstructure:"output"`
}

// LibraryConfig selects where books are stored.
type LibraryConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CacheConfig configures the synthesized clip cache. A zero MaxSizeMB
// disables the disk tier.
type CacheConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Dir              string        `mapstructure:"dir"`
	MemoryMB         int           `mapstructure:"memory_mb"`
	MaxSizeMB        int           `mapstructure:"max_size_mb"`
	CompressionLevel int           `mapstructure:"compression_level"`
	TTL              time.Duration `mapstructure:"ttl"`
}

type SynthesisConfig struct {
	Model             string        `mapstructure:"model"`
	Voice             string        `mapstructure:"voice"`
	SampleRate        int           `mapstructure:"sample_rate"`
	Channels          int           `mapstructure:"channels"`
	Concurrency       int           `mapstructure:"concurrency"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BaseURL           string        `mapstructure:"base_url"`
}

type ExtractionConfig struct {
	Model string `mapstructure:"model"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	scope := gap.NewScope(gap.User, AppName)
	libraryPath, err := scope.DataPath("library.json")
	if err != nil {
		libraryPath = filepath.Join("~", "."+AppName, "library.json")
	}
	cacheDir, err := scope.CacheDir()
	if err != nil {
		cacheDir = filepath.Join("~", "."+AppName, "cache")
	}

	return Config{
		Library: LibraryConfig{
			Backend: BackendFile,
			Path:    libraryPath,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: AppName,
			},
		},
		Cache: CacheConfig{
			Enabled:          true,
			Dir:              cacheDir,
			MemoryMB:         64,
			MaxSizeMB:        512,
			CompressionLevel: 3,
			TTL:              30 * 24 * time.Hour,
		},
		Synthesis: SynthesisConfig{
			Model:             "gemini-2.5-flash-preview-tts",
			Voice:             string(book.DefaultVoice),
			SampleRate:        24000,
			Channels:          1,
			Concurrency:       4,
			RequestsPerMinute: 10,
			Timeout:           2 * time.Minute,
		},
		Extraction: ExtractionConfig{
			Model: "gemini-3-flash-preview",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}

// SetDefaults registers every key with v so environment variables reach
// nested settings.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("library.backend", d.Library.Backend)
	v.SetDefault("library.path", d.Library.Path)
	v.SetDefault("library.redis.addr", d.Library.Redis.Addr)
	v.SetDefault("library.redis.password", d.Library.Redis.Password)
	v.SetDefault("library.redis.db", d.Library.Redis.DB)
	v.SetDefault("library.redis.prefix", d.Library.Redis.Prefix)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_mb", d.Cache.MemoryMB)
	v.SetDefault("cache.max_size_mb", d.Cache.MaxSizeMB)
	v.SetDefault("cache.compression_level", d.Cache.CompressionLevel)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("synthesis.model", d.Synthesis.Model)
	v.SetDefault("synthesis.voice", d.Synthesis.Voice)
	v.SetDefault("synthesis.sample_rate", d.Synthesis.SampleRate)
	v.SetDefault("synthesis.channels", d.Synthesis.Channels)
	v.SetDefault("synthesis.concurrency", d.Synthesis.Concurrency)
	v.SetDefault("synthesis.requests_per_minute", d.Synthesis.RequestsPerMinute)
	v.SetDefault("synthesis.timeout", d.Synthesis.Timeout)
	v.SetDefault("synthesis.base_url", d.Synthesis.BaseURL)

	v.SetDefault("extraction.model", d.Extraction.Model)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("output.dir", d.Output.Dir)
}

// Load reads the configuration from v, expands paths and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode configuration: %w", err)
	}

	for _, p := range []*string{&cfg.Library.Path, &cfg.Cache.Dir, &cfg.Output.Dir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return cfg, fmt.Errorf("unable to expand %q: %w", *p, err)
		}
		*p = expanded
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var validSampleRates = []int{8000, 16000, 22050, 24000, 44100, 48000}

// Validate checks the configuration and normalises case-insensitive values.
func (c *Config) Validate() error {
	c.Library.Backend = strings.ToLower(c.Library.Backend)
	switch c.Library.Backend {
	case BackendFile:
		if c.Library.Path == "" {
			return errors.New("library.path cannot be empty for the file backend")
		}
		if ext := filepath.Ext(c.Library.Path); ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return fmt.Errorf("library.path must end in .json, .yaml or .yml, got %q", ext)
		}
	case BackendRedis:
		if c.Library.Redis.Addr == "" {
			return errors.New("library.redis.addr cannot be empty for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid library backend %q: must be one of %v",
			c.Library.Backend, []string{BackendFile, BackendRedis, BackendMemory})
	}

	if c.Cache.Enabled {
		if c.Cache.MemoryMB < 0 || c.Cache.MaxSizeMB < 0 {
			return errors.New("cache sizes cannot be negative")
		}
		if c.Cache.MaxSizeMB > 0 && c.Cache.Dir == "" {
			return errors.New("cache.dir cannot be empty when the disk cache is enabled")
		}
		if c.Cache.CompressionLevel < 0 || c.Cache.CompressionLevel > 4 {
			return fmt.Errorf("cache.compression_level must be between 0 and 4, got %d", c.Cache.CompressionLevel)
		}
	}

	if _, err := book.ParseVoice(c.Synthesis.Voice); err != nil {
		return fmt.Errorf("synthesis.voice: %w", err)
	}
	if !slices.Contains(validSampleRates, c.Synthesis.SampleRate) {
		return fmt.Errorf("invalid sample rate %d: must be one of %v", c.Synthesis.SampleRate, validSampleRates)
	}
	if c.Synthesis.Channels != 1 && c.Synthesis.Channels != 2 {
		return fmt.Errorf("synthesis.channels must be 1 or 2, got %d", c.Synthesis.Channels)
	}
	if c.Synthesis.Concurrency < 1 || c.Synthesis.Concurrency > 32 {
		return fmt.Errorf("synthesis.concurrency must be between 1 and 32, got %d", c.Synthesis.Concurrency)
	}
	if c.Synthesis.RequestsPerMinute < 0 {
		return fmt.Errorf("synthesis.requests_per_minute cannot be negative, got %d", c.Synthesis.RequestsPerMinute)
	}
	if c.Synthesis.Timeout < 0 {
		return fmt.Errorf("synthesis.timeout cannot be negative, got %v", c.Synthesis.Timeout)
	}
	if c.Synthesis.Model == "" || c.Extraction.Model == "" {
		return errors.New("model names cannot be empty")
	}
	return nil
}

// Secrets are read from the environment only, never from the config file.
type Secrets struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	APIKey       string `env:"API_KEY"`
}

// Key returns the Gemini key, preferring GEMINI_API_KEY.
func (s Secrets) Key() string {
	if s.GeminiAPIKey != "" {
		return s.GeminiAPIKey
	}
	return s.APIKey
}

// LoadSecrets loads the given .env files, when present, into the
// environment and parses the secrets from it. Variables already set win.
func LoadSecrets(dotenv ...string) (Secrets, error) {
	var existing []string
	for _, p := range dotenv {
		if p, err := homedir.Expand(p); err == nil && fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Secrets{}, fmt.Errorf("unable to load env file: %w", err)
		}
	}

	s, err := env.ParseAs[Secrets]()
	if err != nil {
		return Secrets{}, fmt.Errorf("error parsing secrets: %w", err)
	}
	return s, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
