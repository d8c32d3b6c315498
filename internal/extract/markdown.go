package extract

import (
	"context"
	"mime"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Markdown is an Extractor for markdown documents. Every heading and
// paragraph becomes one paragraph with inline markup removed; a leading
// first-level heading becomes the title.
type Markdown struct{}

func (Markdown) Extract(_ context.Context, data []byte, _ string) (Result, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var res Result
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph:
		default:
			continue
		}
		p := strings.TrimSpace(norm.NFC.String(inlineText(n, data)))
		if p == "" {
			continue
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && res.Title == "" && len(res.Paragraphs) == 0 {
			res.Title = p
			continue
		}
		res.Paragraphs = append(res.Paragraphs, p)
	}

	if len(res.Paragraphs) == 0 {
		return Result{}, ErrExtractionFailed
	}
	return res, nil
}

func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			switch {
			case t.HardLineBreak():
				sb.WriteByte('\n')
			case t.SoftLineBreak():
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// Mux picks an extractor by media type, falling back to Default.
type Mux struct {
	Types   map[string]Extractor
	Default Extractor
}

// NewMux routes plain text and markdown to the local extractors and
// everything else to fallback.
func NewMux(fallback Extractor) *Mux {
	return &Mux{
		Types: map[string]Extractor{
			"text/plain":      Text{},
			"text/markdown":   Markdown{},
			"text/x-markdown": Markdown{},
		},
		Default: fallback,
	}
}

func (m *Mux) Extract(ctx context.Context, data []byte, mediaType string) (Result, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err == nil {
		if e, ok := m.Types[mt]; ok {
			return e.Extract(ctx, data, mediaType)
		}
	}
	if m.Default == nil {
		return Result{}, ErrExtractionFailed
	}
	return m.Default.Extract(ctx, data, mediaType)
}

// Local reports whether mediaType is read without a remote service.
func (m *Mux) Local(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	_, ok := m.Types[mt]
	return ok
}
