package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/config"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testBook(t *testing.T, texts ...string) book.Book {
	t.Helper()
	b, err := book.New("Aag ka Darya", "Qurratulain Hyder", book.VoiceCharon, texts, testNow)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSelectParagraphs(t *testing.T) {
	b := testBook(t, "ek", "do", "teen")

	ids, err := selectParagraphs(b, nil)
	if err != nil || len(ids) != 3 {
		t.Fatalf("all = %v, %v", ids, err)
	}

	ids, err = selectParagraphs(b, []int{3, 1, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != b.Paragraphs[2].ID || ids[1] != b.Paragraphs[0].ID {
		t.Errorf("ids = %v", ids)
	}

	for _, n := range []int{0, 4} {
		if _, err := selectParagraphs(b, []int{n}); err == nil {
			t.Errorf("paragraph %d should be out of range", n)
		}
	}
}

func TestMarkdown(t *testing.T) {
	md := markdown(testBook(t, "pehla", "doosra"))

	for _, want := range []string{"# Aag ka Darya", "*Qurratulain Hyder*", "**Charon**", "**2.** doosra"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMediaTypeOf(t *testing.T) {
	tests := []struct {
		path string
		data []byte
		want string
	}{
		{"page.png", nil, "image/png"},
		{"scan.PDF", nil, "application/pdf"},
		{"notes.txt", nil, "text/plain; charset=utf-8"},
		{"kahani.MD", nil, "text/markdown; charset=utf-8"},
		{"noext", []byte("%PDF-1.7"), "application/pdf"},
	}
	for _, tt := range tests {
		if got := mediaTypeOf(tt.path, tt.data); got != tt.want {
			t.Errorf("mediaTypeOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOfflineStudio(t *testing.T) {
	cfg := config.Default()
	cfg.Library.Backend = config.BackendMemory
	cfg.Cache.Enabled = false

	offline = true
	t.Cleanup(func() { offline = false })

	a, err := openApp(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close() //nolint:errcheck

	b, err := a.project.Create(context.Background(), "Test", "", book.DefaultVoice, []string{"ek", "do"})
	if err != nil {
		t.Fatal(err)
	}
	st, err := a.studio(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.NarrateAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	d, err := st.Download(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.Clips != len(b.Paragraphs) || d.Name != "Test_Full.wav" {
		t.Errorf("download = %d clips named %s", d.Clips, d.Name)
	}
}

func TestStudioNeedsKey(t *testing.T) {
	cfg := config.Default()
	cfg.Library.Backend = config.BackendMemory
	secrets = config.Secrets{}

	a, err := openApp(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close() //nolint:errcheck

	if _, err := a.studio(nil); err != errNoAPIKey {
		t.Errorf("err = %v, want errNoAPIKey", err)
	}
}

func TestPlainText(t *testing.T) {
	got := plainText(testBook(t, "ek", "do"))
	if got != "ek\n\ndo" {
		t.Errorf("plainText = %q", got)
	}
}
