package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/vaysari11/Final-supernova/internal/gemini"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "one paragraph", []string{"one paragraph"}},
		{"blank line", "first\n\nsecond", []string{"first", "second"}},
		{"whitespace line", "first\n  \t\nsecond", []string{"first", "second"}},
		{"crlf", "first\r\n\r\nsecond", []string{"first", "second"}},
		{"single newline kept", "line one\nline two", []string{"line one\nline two"}},
		{"empties dropped", "\n\n\na\n\n\n\nb\n\n", []string{"a", "b"}},
		{"only blanks", "  \n\n \n", nil},
		{"nfc", "e\u0301", []string{"\u00e9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitText(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText_Extract(t *testing.T) {
	if _, err := (Text{}).Extract(context.Background(), []byte("\n\n"), "text/plain"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func serve(t *testing.T, status int, reply string, check func(gemini.Request)) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gemini.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request: %v", err)
		}
		if check != nil {
			check(req)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
	t.Cleanup(srv.Close)
	return gemini.NewClient("k", gemini.WithBaseURL(srv.URL), gemini.WithHTTPClient(srv.Client()))
}

func textReply(v any) string {
	inner, _ := json.Marshal(v)
	outer, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": string(inner)}}}}},
	})
	return string(outer)
}

func TestGemini_Extract(t *testing.T) {
	doc := []byte("%PDF-1.4 fake")
	client := serve(t, http.StatusOK, textReply(map[string]any{
		"title":      " دیوان ",
		"paragraphs": []string{"پہلا", "  ", "دوسرا"},
	}), func(req gemini.Request) {
		parts := req.Contents[0].Parts
		if len(parts) != 2 || parts[0].InlineData == nil {
			t.Errorf("unexpected parts: %+v", parts)
			return
		}
		if parts[0].InlineData.MimeType != "application/pdf" {
			t.Errorf("mime = %q", parts[0].InlineData.MimeType)
		}
		if parts[0].InlineData.Data != base64.StdEncoding.EncodeToString(doc) {
			t.Error("document not sent inline")
		}
		if parts[1].Text != extractionPrompt {
			t.Errorf("prompt = %q", parts[1].Text)
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" || req.GenerationConfig.ResponseSchema == nil {
			t.Error("structured output not requested")
		}
	})

	res, err := NewGemini(client, "").Extract(context.Background(), doc, "application/pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if res.Title != "دیوان" {
		t.Errorf("Title = %q", res.Title)
	}
	if !reflect.DeepEqual(res.Paragraphs, []string{"پہلا", "دوسرا"}) {
		t.Errorf("Paragraphs = %q", res.Paragraphs)
	}
}

func TestGemini_ExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"unsupported","status":"INVALID_ARGUMENT"}}`},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`},
		{"no paragraphs", http.StatusOK, textReply(map[string]any{"title": "t", "paragraphs": []string{}})},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
		{"not json", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"I cannot read this"}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := serve(t, tt.status, tt.reply, nil)
			if _, err := NewGemini(client, "").Extract(context.Background(), []byte{0xff, 0xd8}, "image/jpeg"); !errors.Is(err, ErrExtractionFailed) {
				t.Errorf("expected ErrExtractionFailed, got %v", err)
			}
		})
	}
}

func TestGemini_PlainTextStaysLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("plain text was sent to the API")
	}))
	defer srv.Close()
	client := gemini.NewClient("k", gemini.WithBaseURL(srv.URL))

	res, err := NewGemini(client, "").Extract(context.Background(), []byte("a\n\nb"), "text/plain; charset=utf-8")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Paragraphs) != 2 {
		t.Errorf("Paragraphs = %q", res.Paragraphs)
	}
}

func TestMarkdown(t *testing.T) {
	src := "# Toba Tek Singh\n\nPehla **paragraph** hai\nsame line.\n\n## Hissa do\n\n- list items are skipped\n\nAakhri `baat`.\n"

	res, err := Markdown{}.Extract(context.Background(), []byte(src), "text/markdown")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Title != "Toba Tek Singh" {
		t.Errorf("title = %q", res.Title)
	}
	want := []string{"Pehla paragraph hai same line.", "Hissa do", "Aakhri baat."}
	if len(res.Paragraphs) != len(want) {
		t.Fatalf("paragraphs = %q, want %q", res.Paragraphs, want)
	}
	for i := range want {
		if res.Paragraphs[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, res.Paragraphs[i], want[i])
		}
	}

	if _, err := (Markdown{}).Extract(context.Background(), []byte("# Only a title\n"), "text/markdown"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("title-only document = %v", err)
	}
}

type stubExtractor struct{ called bool }

func (s *stubExtractor) Extract(context.Context, []byte, string) (Result, error) {
	s.called = true
	return Result{Paragraphs: []string{"remote"}}, nil
}

func TestMux(t *testing.T) {
	remote := &stubExtractor{}
	m := NewMux(remote)

	res, err := m.Extract(context.Background(), []byte("ek\n\ndo"), "text/plain; charset=utf-8")
	if err != nil || len(res.Paragraphs) != 2 || remote.called {
		t.Errorf("plain text = %v, %v (remote called: %v)", res, err, remote.called)
	}
	if !m.Local("text/markdown; charset=utf-8") || m.Local("image/png") {
		t.Error("Local misreports media types")
	}

	res, err = m.Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil || !remote.called || res.Paragraphs[0] != "remote" {
		t.Errorf("image = %v, %v", res, err)
	}

	if _, err := (&Mux{}).Extract(context.Background(), nil, "image/png"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("no default = %v", err)
	}
}
