package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
)

// Tiered checks memory before disk and promotes disk hits into memory.
type Tiered struct {
	memory *MemoryCache
	disk   *DiskCache
	ttl    time.Duration
}

// NewTiered builds the clip cache described by cfg. When cfg.DiskPath is
// empty only the memory tier is used.
func NewTiered(cfg Config) (*Tiered, error) {
	t := &Tiered{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		ttl:    cfg.TTL,
	}
	if cfg.DiskPath == "" {
		return t, nil
	}

	path, err := homedir.Expand(cfg.DiskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand cache path: %w", err)
	}
	t.disk, err = NewDiskCache(path, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}
	if t.ttl > 0 {
		if n, err := t.disk.RemoveOlderThan(time.Now().Add(-t.ttl)); err != nil {
			log.Warn("failed to prune clip cache", "err", err)
		} else if n > 0 {
			log.Debug("pruned clip cache", "removed", n)
		}
	}
	return t, nil
}

func (t *Tiered) Get(key string) ([]byte, bool) {
	if data, ok := t.memory.Get(key); ok {
		return data, true
	}
	if t.disk == nil {
		return nil, false
	}
	data, ok := t.disk.Get(key)
	if !ok {
		return nil, false
	}
	if err := t.memory.Put(key, data); err != nil && !errors.Is(err, ErrItemTooLarge) {
		log.Debug("failed to promote clip", "key", key, "err", err)
	}
	return data, true
}

// Put writes through both tiers. A value too large for memory still goes to disk.
func (t *Tiered) Put(key string, value []byte) error {
	memErr := t.memory.Put(key, value)
	if memErr != nil && !errors.Is(memErr, ErrItemTooLarge) {
		return fmt.Errorf("L1 cache error: %w", memErr)
	}
	if t.disk == nil {
		return memErr
	}
	if err := t.disk.Put(key, value); err != nil {
		return fmt.Errorf("L2 cache error: %w", err)
	}
	return nil
}

func (t *Tiered) Delete(key string) error {
	err := t.memory.Delete(key)
	if t.disk != nil {
		err = errors.Join(err, t.disk.Delete(key))
	}
	return err
}

func (t *Tiered) Clear() error {
	err := t.memory.Clear()
	if t.disk != nil {
		err = errors.Join(err, t.disk.Clear())
	}
	return err
}

func (t *Tiered) Size() int64 {
	n := t.memory.Size()
	if t.disk != nil {
		n += t.disk.Size()
	}
	return n
}

func (t *Tiered) Contains(key string) bool {
	return t.memory.Contains(key) || (t.disk != nil && t.disk.Contains(key))
}

// Stats aggregates both tiers. Hits count once per lookup served by either tier.
func (t *Tiered) Stats() Stats {
	s := t.memory.Stats()
	if t.disk == nil {
		return s
	}
	d := t.disk.Stats()
	s.Capacity += d.Capacity
	s.Size += d.Size
	s.Hits += d.Hits
	s.Misses = d.Misses
	s.Evictions += d.Evictions
	s.ItemCount = d.ItemCount
	if d.LastAccess.After(s.LastAccess) {
		s.LastAccess = d.LastAccess
	}
	s.HitRate = 0
	s.computeHitRate()
	return s
}

// TierStats reports each tier separately.
func (t *Tiered) TierStats() map[Level]Stats {
	out := map[Level]Stats{LevelMemory: t.memory.Stats()}
	if t.disk != nil {
		out[LevelDisk] = t.disk.Stats()
	}
	return out
}

func (t *Tiered) Close() error {
	if t.disk == nil {
		return nil
	}
	return t.disk.Close()
}
