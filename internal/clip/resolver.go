package clip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/vaysari11/Final-supernova/internal/cache"
)

// maxClipSize bounds a single remote clip.
const maxClipSize = 256 << 20

// Payload is a clip's encoded bytes and, when known, their media type.
type Payload struct {
	Data      []byte
	MediaType string
}

// Resolver turns a handle into the bytes it refers to.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (Payload, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, handle string) (Payload, error)

func (f ResolverFunc) Resolve(ctx context.Context, handle string) (Payload, error) {
	return f(ctx, handle)
}

// BlobResolver serves blob: handles from an in-process store.
type BlobResolver struct {
	Store *cache.BlobStore
}

func (r BlobResolver) Resolve(_ context.Context, handle string) (Payload, error) {
	b, err := r.Store.Lookup(handle)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %s: %v", ErrFetchFailed, handle, err)
	}
	return Payload{Data: b.Data, MediaType: b.MediaType}, nil
}

// HTTPResolver downloads http and https handles.
type HTTPResolver struct {
	Client *http.Client
	// MaxSize bounds a single clip in bytes; zero means maxClipSize.
	// Larger clips fail rather than being cut short.
	MaxSize int64
}

func (r HTTPResolver) Resolve(ctx context.Context, handle string) (Payload, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, handle, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("%w: %s: %s", ErrFetchFailed, handle, resp.Status)
	}
	limit := r.MaxSize
	if limit <= 0 {
		limit = maxClipSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: reading %s: %v", ErrFetchFailed, handle, err)
	}
	if int64(len(data)) > limit {
		return Payload{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrFetchFailed, handle, limit)
	}
	return Payload{Data: data, MediaType: resp.Header.Get("Content-Type")}, nil
}

// FileResolver reads file:// handles and bare paths.
type FileResolver struct {
	// Root, when set, is prepended to relative paths.
	Root string
}

func (r FileResolver) Resolve(_ context.Context, handle string) (Payload, error) {
	path := handle
	if strings.HasPrefix(handle, "file://") {
		u, err := url.Parse(handle)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		path = u.Path
	}
	if r.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.Root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return Payload{Data: data}, nil
}

// Schemes dispatches on the handle's scheme. Handles without a scheme go to
// the "" entry when present.
type Schemes map[string]Resolver

func (s Schemes) Resolve(ctx context.Context, handle string) (Payload, error) {
	scheme := ""
	if i := strings.Index(handle, ":"); i > 0 {
		scheme = strings.ToLower(handle[:i])
	}
	r, ok := s[scheme]
	if !ok {
		return Payload{}, fmt.Errorf("%w: %w: %s", ErrFetchFailed, ErrUnsupportedHandle, handle)
	}
	return r.Resolve(ctx, handle)
}

// DefaultResolver understands blob:, http(s):, file: and bare path handles.
func DefaultResolver(blobs *cache.BlobStore, client *http.Client) Schemes {
	web := HTTPResolver{Client: client}
	files := FileResolver{}
	return Schemes{
		"blob":  BlobResolver{Store: blobs},
		"http":  web,
		"https": web,
		"file":  files,
		"":      files,
	}
}
