package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func compressible(n int) []byte {
	return bytes.Repeat([]byte{0x01, 0x00, 0x02, 0x00}, n/4)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	for _, level := range []int{0, 3} {
		dc, err := NewDiskCache(t.TempDir(), 1<<20, level)
		if err != nil {
			t.Fatalf("NewDiskCache failed: %v", err)
		}

		value := compressible(8192)
		if err := dc.Put("clip", value); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, ok := dc.Get("clip")
		if !ok {
			t.Fatalf("level %d: Get missed", level)
		}
		if !bytes.Equal(got, value) {
			t.Errorf("level %d: value mismatch", level)
		}

		if level > 0 && dc.Size() >= int64(len(value)) {
			t.Errorf("level %d: stored %d bytes, expected compression below %d", level, dc.Size(), len(value))
		}
	}
}

func TestDiskCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	value := compressible(4096)
	if err := dc.Put("clip", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, ok := reopened.Get("clip")
	if !ok {
		t.Fatal("entry lost after reopen")
	}
	if !bytes.Equal(got, value) {
		t.Error("value mismatch after reopen")
	}
}

func TestDiskCache_EvictsOldest(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 100, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	dc.Put("a", make([]byte, 40)) //nolint:errcheck
	time.Sleep(5 * time.Millisecond)
	dc.Put("b", make([]byte, 40)) //nolint:errcheck
	time.Sleep(5 * time.Millisecond)
	dc.Get("a")
	dc.Put("c", make([]byte, 40)) //nolint:errcheck

	if dc.Contains("b") {
		t.Error("least recently used entry was kept")
	}
	if !dc.Contains("a") || !dc.Contains("c") {
		t.Error("recent entries were evicted")
	}
	if got := dc.Entries(); len(got) != 2 || got[1] != "c" {
		t.Errorf("Entries() = %v, want [a c]", got)
	}
}

func TestDiskCache_MissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	dc.Put("clip", []byte("data")) //nolint:errcheck

	if err := os.Remove(filepath.Join(dir, fileName("clip"))); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok := dc.Get("clip"); ok {
		t.Error("Get hit for a deleted file")
	}
	if dc.Contains("clip") {
		t.Error("stale entry kept in the index")
	}
}

func TestDiskCache_CorruptIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, indexFile), []byte("not gob"), 0o644); err != nil {
		t.Fatal(err)
	}

	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	if dc.Stats().ItemCount != 0 {
		t.Error("expected an empty cache")
	}
}

func TestDiskCache_RemoveOlderThan(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	dc.Put("old", []byte("1")) //nolint:errcheck
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	dc.Put("new", []byte("2")) //nolint:errcheck

	n, err := dc.RemoveOlderThan(cutoff)
	if err != nil {
		t.Fatalf("RemoveOlderThan failed: %v", err)
	}
	if n != 1 || dc.Contains("old") || !dc.Contains("new") {
		t.Errorf("RemoveOlderThan removed %d entries, want only old", n)
	}
}

func TestDiskCache_ItemTooLarge(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 10, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	if err := dc.Put("big", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("expected ErrItemTooLarge, got %v", err)
	}
}
