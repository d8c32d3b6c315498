package clip

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/cache"
)

func tone(channels, rate, frames int, amp float32) *audio.Buffer {
	b := audio.NewBuffer(channels, rate, frames)
	for c := 0; c < channels; c++ {
		for i := 0; i < frames; i++ {
			b.Data[c][i] = amp * float32(math.Sin(float64(i+c)/10))
		}
	}
	return b
}

func mustWAV(t *testing.T, b *audio.Buffer) []byte {
	t.Helper()
	data, err := audio.EncodeWAV(b)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	return data
}

func TestWAVDecoder_DecodesEncoderOutput(t *testing.T) {
	in := tone(2, 24000, 256, 0.7)

	out, err := WAVDecoder{}.Decode(Payload{Data: mustWAV(t, in), MediaType: "audio/wav"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Channels != 2 || out.SampleRate != 24000 || out.Frames() != 256 {
		t.Fatalf("decoded %d ch @ %d Hz, %d frames", out.Channels, out.SampleRate, out.Frames())
	}

	for c := 0; c < 2; c++ {
		for i := range in.Data[c] {
			want := float32(float64(audio.FloatToInt16(in.Data[c][i])) / 32768)
			if out.Data[c][i] != want {
				t.Fatalf("ch %d frame %d = %v, want %v", c, i, out.Data[c][i], want)
			}
		}
	}
}

func TestWAVDecoder_RawL16(t *testing.T) {
	raw := make([]byte, 8)
	for i, s := range []int16{0, 16384, -16384, 32767} {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(s))
	}

	tests := []struct {
		name      string
		mediaType string
		raw       audio.PCMFormat
		wantRate  int
		wantCh    int
	}{
		{"rate from media type", "audio/L16;codec=pcm;rate=24000", audio.PCMFormat{}, 24000, 1},
		{"fallback format", "audio/pcm", audio.PCMFormat{SampleRate: 16000, Channels: 2}, 16000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := WAVDecoder{Raw: tt.raw}.Decode(Payload{Data: raw, MediaType: tt.mediaType})
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if buf.SampleRate != tt.wantRate || buf.Channels != tt.wantCh {
				t.Errorf("got %d ch @ %d Hz, want %d ch @ %d Hz", buf.Channels, buf.SampleRate, tt.wantCh, tt.wantRate)
			}
		})
	}
}

func TestWAVDecoder_Rejects(t *testing.T) {
	tests := map[string]Payload{
		"empty":       {},
		"not wav":     {Data: []byte("definitely not a RIFF file at all, just text")},
		"l16 no rate": {Data: []byte{1, 2}, MediaType: "audio/L16"},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (WAVDecoder{}).Decode(p); !errors.Is(err, ErrDecodeFailed) {
				t.Errorf("expected ErrDecodeFailed, got %v", err)
			}
		})
	}
}

func TestSchemes_Dispatch(t *testing.T) {
	blobs := cache.NewBlobStore()
	h := blobs.Register([]byte("blob-bytes"), "audio/wav")

	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(path, []byte("file-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clip.wav" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		fmt.Fprint(w, "http-bytes")
	}))
	defer srv.Close()

	r := DefaultResolver(blobs, srv.Client())
	tests := []struct {
		handle string
		want   string
	}{
		{h, "blob-bytes"},
		{"file://" + path, "file-bytes"},
		{path, "file-bytes"},
		{srv.URL + "/clip.wav", "http-bytes"},
	}
	for _, tt := range tests {
		p, err := r.Resolve(context.Background(), tt.handle)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.handle, err)
			continue
		}
		if string(p.Data) != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.handle, p.Data, tt.want)
		}
	}

	failures := []struct {
		handle string
		want   error
	}{
		{"blob:unknown", ErrFetchFailed},
		{srv.URL + "/missing.wav", ErrFetchFailed},
		{filepath.Join(dir, "missing.wav"), ErrFetchFailed},
		{"ftp://host/clip.wav", ErrUnsupportedHandle},
	}
	for _, tt := range failures {
		if _, err := r.Resolve(context.Background(), tt.handle); !errors.Is(err, tt.want) {
			t.Errorf("Resolve(%q) error = %v, want %v", tt.handle, err, tt.want)
		}
	}
}

func TestSchemes_UnsupportedIsFetchFailure(t *testing.T) {
	_, err := DefaultResolver(cache.NewBlobStore(), nil).Resolve(context.Background(), "ftp://host/clip.wav")
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, ErrUnsupportedHandle) {
		t.Errorf("error = %v, want both ErrFetchFailed and ErrUnsupportedHandle", err)
	}
}

func TestHTTPResolver_OversizedClipFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "0123456789")
	}))
	defer srv.Close()

	tests := []struct {
		max     int64
		wantErr bool
	}{
		{10, false},
		{9, true},
	}
	for _, tt := range tests {
		r := HTTPResolver{Client: srv.Client(), MaxSize: tt.max}
		p, err := r.Resolve(context.Background(), srv.URL+"/clip.wav")
		if tt.wantErr {
			if !errors.Is(err, ErrFetchFailed) {
				t.Errorf("MaxSize %d: error = %v, want ErrFetchFailed", tt.max, err)
			}
			continue
		}
		if err != nil || string(p.Data) != "0123456789" {
			t.Errorf("MaxSize %d: got %q, %v", tt.max, p.Data, err)
		}
	}
}

func TestFetcher_FetchAllPreservesOrder(t *testing.T) {
	clips := map[string][]byte{}
	delays := map[string]time.Duration{}
	var handles []string
	for i := 0; i < 6; i++ {
		h := fmt.Sprintf("clip-%d", i)
		clips[h] = mustWAV(t, tone(1, 24000, 10*(i+1), 0.5))
		delays[h] = time.Duration(6-i) * 3 * time.Millisecond // later handles resolve first
		handles = append(handles, h)
	}

	r := ResolverFunc(func(ctx context.Context, h string) (Payload, error) {
		time.Sleep(delays[h])
		return Payload{Data: clips[h]}, nil
	})

	bufs, err := NewFetcher(r, WAVDecoder{}).FetchAll(context.Background(), handles)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	for i, b := range bufs {
		if b.Frames() != 10*(i+1) {
			t.Errorf("buffer %d has %d frames, want %d", i, b.Frames(), 10*(i+1))
		}
	}
}

func TestFetcher_FailureAbortsBatch(t *testing.T) {
	r := ResolverFunc(func(ctx context.Context, h string) (Payload, error) {
		if h == "bad" {
			return Payload{}, fmt.Errorf("%w: %s", ErrFetchFailed, h)
		}
		<-ctx.Done()
		return Payload{}, ctx.Err()
	})

	_, err := NewFetcher(r, WAVDecoder{}).FetchAll(context.Background(), []string{"a", "bad", "b"})
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("expected ErrFetchFailed, got %v", err)
	}
}

func TestMerger_MergeHandles(t *testing.T) {
	blobs := cache.NewBlobStore()
	a := blobs.Register(mustWAV(t, audio.NewBuffer(1, 24000, 24000)), "audio/wav")
	b := blobs.Register(mustWAV(t, audio.NewBuffer(1, 24000, 12000)), "audio/wav")

	m := NewMerger(NewFetcher(DefaultResolver(blobs, nil), WAVDecoder{}))
	res, err := m.MergeHandles(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("MergeHandles failed: %v", err)
	}
	if res.Buffer.Frames() != 36000 {
		t.Errorf("Frames() = %d, want 36000", res.Buffer.Frames())
	}
	if len(res.WAV) != 72044 {
		t.Errorf("len(WAV) = %d, want 72044", len(res.WAV))
	}
}

func TestMerger_Errors(t *testing.T) {
	blobs := cache.NewBlobStore()
	mono24 := blobs.Register(mustWAV(t, tone(1, 24000, 100, 0.2)), "audio/wav")
	mono22 := blobs.Register(mustWAV(t, tone(1, 22050, 100, 0.2)), "audio/wav")
	junk := blobs.Register([]byte("garbage that is not a wav file at all......"), "audio/wav")

	m := NewMerger(NewFetcher(DefaultResolver(blobs, nil), WAVDecoder{}))
	tests := []struct {
		name    string
		handles []string
		want    error
	}{
		{"empty", nil, audio.ErrEmptyInput},
		{"rate mismatch", []string{mono24, mono22}, audio.ErrIncompatibleFormats},
		{"undecodable", []string{mono24, junk}, ErrDecodeFailed},
		{"missing", []string{mono24, "blob:gone"}, ErrFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.MergeHandles(context.Background(), tt.handles); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
