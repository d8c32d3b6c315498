// Package library persists the user's books. Stores only ever see
// sanitized snapshots: runtime status and audio handles are stripped on
// save and reset again on load.
package library

import (
	"context"
	"errors"

	"github.com/vaysari11/Final-supernova/internal/book"
)

// ErrBookNotFound is returned when an ID matches no book.
var ErrBookNotFound = errors.New("book not found")

// Store loads and saves the whole library. Load returns nil, nil when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]book.Book, error)
	Save(ctx context.Context, books []book.Book) error
}

type snapshot struct {
	Books []book.Book `json:"books" yaml:"books"`
}
