// Package extract turns source material into paragraph texts, either by
// asking Gemini to read a scanned document or by splitting typed text.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrExtractionFailed is returned when a document yields no usable text.
var ErrExtractionFailed = errors.New("extraction failed")

// Result is the outcome of an extraction.
type Result struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Extractor reads a document of the given media type.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (Result, error)
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// SplitText splits typed text into paragraphs at blank lines. Paragraphs are
// trimmed, NFC-normalized, and empty ones dropped.
func SplitText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range blankLines.Split(text, -1) {
		p = strings.TrimSpace(norm.NFC.String(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Text is an Extractor for plain-text documents.
type Text struct{}

func (Text) Extract(_ context.Context, data []byte, _ string) (Result, error) {
	paras := SplitText(string(data))
	if len(paras) == 0 {
		return Result{}, ErrExtractionFailed
	}
	return Result{Paragraphs: paras}, nil
}
