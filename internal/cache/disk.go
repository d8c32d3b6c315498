package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "cache.index"

	// values below this size are stored uncompressed
	compressThreshold = 1024
)

// DiskCache persists clips across runs, optionally zstd-compressed.
type DiskCache struct {
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

// diskEntry is persisted in the gob index.
type diskEntry struct {
	Key          string
	File         string
	Size         int64 // bytes on disk
	OriginalSize int64
	Stored       time.Time
	LastAccess   time.Time
	Compressed   bool
}

// NewDiskCache opens (or creates) a disk cache rooted at basePath. A
// compressionLevel of 0 stores values as-is.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// always able to read compressed entries written by an earlier run
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	dc.decoder = decoder

	if err := dc.loadIndex(); err != nil {
		log.Warn("discarding unreadable cache index", "path", basePath, "err", err)
		dc.index = make(map[string]*diskEntry)
	}
	for _, e := range dc.index {
		dc.size += e.Size
	}
	return dc, nil
}

func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := dc.read(entry)
	if err != nil {
		log.Debug("dropping cache entry", "key", key, "err", err)
		dc.remove(entry)
		dc.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	dc.stats.Hits++
	dc.stats.LastAccess = entry.LastAccess
	return data, true
}

func (dc *DiskCache) read(entry *diskEntry) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dc.basePath, entry.File))
	if err != nil {
		return nil, err
	}
	if !entry.Compressed {
		return data, nil
	}
	out, err := dc.decoder.DecodeAll(data, make([]byte, 0, entry.OriginalSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	return out, nil
}

func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data, compressed := value, false
	if dc.encoder != nil && len(value) > compressThreshold {
		if packed := dc.encoder.EncodeAll(value, nil); len(packed) < len(value) {
			data, compressed = packed, true
		}
	}

	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}

	if existing, ok := dc.index[key]; ok {
		dc.remove(existing)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	entry := &diskEntry{
		Key:          key,
		File:         fileName(key),
		Size:         n,
		OriginalSize: int64(len(value)),
		Stored:       time.Now(),
		Compressed:   compressed,
	}
	entry.LastAccess = entry.Stored

	if err := writeFileAtomic(filepath.Join(dc.basePath, entry.File), data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	dc.index[key] = entry
	dc.size += n

	return dc.saveIndex()
}

func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		return nil
	}
	dc.remove(entry)
	return dc.saveIndex()
}

func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, entry := range dc.index {
		dc.remove(entry)
	}
	return dc.saveIndex()
}

func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	_, ok := dc.index[key]
	return ok
}

func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	stats.computeHitRate()
	return stats
}

// RemoveOlderThan drops entries stored before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) (int, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for _, entry := range dc.index {
		if entry.Stored.Before(cutoff) {
			dc.remove(entry)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, dc.saveIndex()
}

// Entries lists the index sorted by last access, oldest first.
func (dc *DiskCache) Entries() []string {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entries := make([]*diskEntry, 0, len(dc.index))
	for _, e := range dc.index {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.Before(entries[j].LastAccess)
	})

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Close persists the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.encoder != nil {
		dc.encoder.Close()
	}
	dc.decoder.Close()
	return dc.saveIndex()
}

// must be called with lock held
func (dc *DiskCache) remove(entry *diskEntry) {
	if err := os.Remove(filepath.Join(dc.basePath, entry.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug("failed to remove cache file", "file", entry.File, "err", err)
	}
	delete(dc.index, entry.Key)
	dc.size -= entry.Size
}

// must be called with lock held
func (dc *DiskCache) evictOldest() {
	var oldest *diskEntry
	for _, e := range dc.index {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldest = e
		}
	}
	if oldest != nil {
		dc.remove(oldest)
		dc.stats.Evictions++
		dc.stats.LastEvict = time.Now()
	}
}

func (dc *DiskCache) loadIndex() error {
	file, err := os.Open(filepath.Join(dc.basePath, indexFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close() //nolint:errcheck

	return gob.NewDecoder(file).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.basePath, indexFile)
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(file).Encode(dc.index)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("failed to save cache index: %w", err)
	}
	return os.Rename(tmp, path)
}

func fileName(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16]) + ".clip"
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return err
	}
	return os.Rename(tmp, path)
}
