package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted is returned when a stored entry cannot be decoded.
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Level identifies a cache tier.
type Level int

const (
	LevelMemory Level = iota
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "L1-Memory"
	case LevelDisk:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int64 // bytes
	Size      int64 // bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) computeHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Config sizes the clip cache tiers.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes
	DiskPath         string // directory for cache files
	CompressionLevel int    // zstd level, 0 disables compression
	TTL              time.Duration
}

// DefaultConfig returns the default clip cache configuration.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 * 1024 * 1024,
		DiskCapacity:     512 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
	}
}

// Cache is implemented by every tier.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error

	Size() int64
	Contains(key string) bool

	Stats() Stats
}

// Key derives the cache key of a synthesized clip.
func Key(model, voice, text string) string {
	hash := sha256.Sum256([]byte(model + "|" + voice + "|" + text))
	return hex.EncodeToString(hash[:16])
}
