package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/cache"
	"github.com/vaysari11/Final-supernova/internal/clip"
	"github.com/vaysari11/Final-supernova/internal/library"
	"github.com/vaysari11/Final-supernova/internal/metrics"
	"github.com/vaysari11/Final-supernova/internal/studio"
	"github.com/vaysari11/Final-supernova/internal/synth"
)

func newTestServer(t *testing.T) (*Server, *synth.Mock) {
	t.Helper()

	lib := library.Open(context.Background(), library.NewMemoryStore())
	blobs := cache.NewBlobStore()
	mock := synth.NewMock()
	m := metrics.New()
	merger := clip.NewMerger(clip.NewFetcher(clip.BlobResolver{Store: blobs}, clip.WAVDecoder{}))
	st := studio.New(studio.NewProject(lib), mock, blobs, merger, studio.WithMetrics(m))
	return New(st, WithMetrics(m)), mock
}

func do(t *testing.T, s *Server, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func jsonRequest(method, path string, v any) *http.Request {
	var body io.Reader
	if v != nil {
		b, _ := json.Marshal(v)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if v != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func createBook(t *testing.T, s *Server, text string) book.Book {
	t.Helper()
	resp, body := do(t, s, jsonRequest(http.MethodPost, "/books", map[string]string{
		"title": "Shaam ki Baatein",
		"text":  text,
		"voice": "puck",
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	var b book.Book
	if err := json.Unmarshal(body, &b); err != nil {
		t.Fatal(err)
	}
	return b
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return e.Error
}

func TestVoices(t *testing.T) {
	s, _ := newTestServer(t)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/voices", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var voices []book.VoiceOption
	if err := json.Unmarshal(body, &voices); err != nil {
		t.Fatal(err)
	}
	if len(voices) != 5 || voices[0].Name != book.VoiceKore {
		t.Errorf("voices = %+v", voices)
	}
}

func TestCreateFromText(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBook(t, s, "pehla\n\ndoosra\n\n\n teesra ")

	if len(b.Paragraphs) != 3 || b.Paragraphs[2].Text != "teesra" {
		t.Errorf("paragraphs = %+v", b.Paragraphs)
	}
	if b.Voice != book.VoicePuck {
		t.Errorf("voice = %s", b.Voice)
	}

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/books", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list []bookSummary
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Paragraphs != 3 || list[0].Narrated != 0 {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateFromUpload(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("title", "Khat")
	part, err := w.CreateFormFile("file", "khat.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("ek\n\ndo"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/books", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, body := do(t, s, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var b book.Book
	if err := json.Unmarshal(body, &b); err != nil {
		t.Fatal(err)
	}
	if b.Title != "Khat" || len(b.Paragraphs) != 2 {
		t.Errorf("book = %+v", b)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := do(t, s, jsonRequest(http.MethodPost, "/books", map[string]string{"title": " ", "text": "ek"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty title status = %d", resp.StatusCode)
	}
	resp, _ = do(t, s, jsonRequest(http.MethodPost, "/books", map[string]string{"title": "x", "text": "ek", "voice": "Robot"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown voice status = %d", resp.StatusCode)
	}
}

func TestNarrateAndDownload(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBook(t, s, "ek\n\ndo")

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/download", nil))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("empty download status = %d", resp.StatusCode)
	}
	if msg := errorMessage(t, body); msg != studio.MsgNothingToMerge {
		t.Errorf("message = %q", msg)
	}

	resp, body = do(t, s, httptest.NewRequest(http.MethodPost, "/paragraphs/"+b.Paragraphs[0].ID+"/narrate", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("narrate status = %d: %s", resp.StatusCode, body)
	}
	var p book.Paragraph
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatal(err)
	}
	if !p.HasAudio() || p.Status != book.StatusIdle {
		t.Fatalf("paragraph = %+v", p)
	}

	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/audio/"+p.AudioURL, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audio status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("audio content type = %q", ct)
	}
	if _, err := audio.ReadWAVHeader(body); err != nil {
		t.Errorf("clip is not a WAV: %v", err)
	}

	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/download", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d: %s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Shaam_ki_Baatein_Full.wav") {
		t.Errorf("content disposition = %q", cd)
	}
	if len(body) != len(bodyOfClip(t, s, p.AudioURL)) {
		t.Errorf("single-clip download should equal the clip, got %d bytes", len(body))
	}
}

func bodyOfClip(t *testing.T, s *Server, handle string) []byte {
	t.Helper()
	_, body := do(t, s, httptest.NewRequest(http.MethodGet, "/audio/"+handle, nil))
	return body
}

func TestNarrateRateLimited(t *testing.T) {
	s, mock := newTestServer(t)
	b := createBook(t, s, "ek")
	mock.SetFailure(synth.ErrRateLimited)

	resp, body := do(t, s, httptest.NewRequest(http.MethodPost, "/paragraphs/"+b.Paragraphs[0].ID+"/narrate", nil))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if msg := errorMessage(t, body); msg != studio.MsgRateLimited {
		t.Errorf("message = %q", msg)
	}
}

func TestAppendEditDelete(t *testing.T) {
	s, _ := newTestServer(t)
	b := createBook(t, s, "ek")

	resp, body := do(t, s, jsonRequest(http.MethodPost, "/books/"+b.ID+"/paragraphs", map[string]any{
		"paragraphs": []string{"do", "teen"},
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("append status = %d: %s", resp.StatusCode, body)
	}
	var got book.Book
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Paragraphs) != 3 {
		t.Errorf("paragraphs = %d, want 3", len(got.Paragraphs))
	}

	resp, body = do(t, s, jsonRequest(http.MethodPatch, "/books/"+b.ID, map[string]string{"author": "Manto"}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status = %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Author != "Manto" || got.Title != b.Title {
		t.Errorf("metadata = %q by %q", got.Title, got.Author)
	}

	resp, _ = do(t, s, httptest.NewRequest(http.MethodDelete, "/books/"+b.ID, nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/current", nil))
	if resp.StatusCode != http.StatusConflict || errorMessage(t, body) != studio.MsgNoProject {
		t.Errorf("current after delete = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/books/"+b.ID, nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted status = %d", resp.StatusCode)
	}
}

func TestUnknownAudio(t *testing.T) {
	s, _ := newTestServer(t)
	resp, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/audio/blob:nope", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, httptest.NewRequest(http.MethodGet, "/voices", nil))

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte(`route="/voices"`)) {
		t.Errorf("metrics missing request counter:\n%s", body)
	}
}
