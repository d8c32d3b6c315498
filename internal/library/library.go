package library

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"

	"github.com/vaysari11/Final-supernova/internal/book"
)

// Library is the ordered collection of books, newest first. Every mutation
// is written through to the Store. Storage failures are logged, never
// returned: a failed load yields an empty library.
type Library struct {
	store  Store
	logger *log.Logger

	mu    sync.RWMutex
	books []book.Book
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the library's logger.
func WithLogger(l *log.Logger) Option {
	return func(lib *Library) { lib.logger = l }
}

// Open loads the library from store.
func Open(ctx context.Context, store Store, opts ...Option) *Library {
	lib := &Library{store: store, logger: log.Default()}
	for _, opt := range opts {
		opt(lib)
	}

	books, err := store.Load(ctx)
	if err != nil {
		lib.logger.Error("failed to load library", "err", err)
		books = nil
	}
	lib.books = book.SanitizeAll(books)
	lib.logger.Debug("library loaded", "books", len(lib.books))
	return lib
}

// Books returns a snapshot of all books.
func (l *Library) Books() []book.Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]book.Book(nil), l.books...)
}

// Len returns the number of books.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.books)
}

// Get returns the book with the given ID.
func (l *Library) Get(id string) (book.Book, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.index(id); i >= 0 {
		return l.books[i], nil
	}
	return book.Book{}, ErrBookNotFound
}

// Add stores a new book at the front of the library.
func (l *Library) Add(ctx context.Context, b book.Book) {
	l.mu.Lock()
	defer l.mu.Unlock()

	books := make([]book.Book, 0, len(l.books)+1)
	books = append(books, b)
	books = append(books, l.books...)
	l.books = books
	l.persist(ctx)
}

// Put replaces the stored copy of b, matched by ID.
func (l *Library) Put(ctx context.Context, b book.Book) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(b.ID)
	if i < 0 {
		return ErrBookNotFound
	}
	books := append([]book.Book(nil), l.books...)
	books[i] = b
	l.books = books
	l.persist(ctx)
	return nil
}

// Delete removes the book with the given ID.
func (l *Library) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return ErrBookNotFound
	}
	books := make([]book.Book, 0, len(l.books)-1)
	books = append(books, l.books[:i]...)
	books = append(books, l.books[i+1:]...)
	l.books = books
	l.persist(ctx)
	return nil
}

type titles []book.Book

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Lookup resolves a user-supplied reference: an exact ID, an ID prefix,
// or the best fuzzy match on title.
func (l *Library) Lookup(ref string) (book.Book, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.index(ref); i >= 0 {
		return l.books[i], nil
	}
	if len(ref) >= 4 {
		var match []book.Book
		for _, b := range l.books {
			if len(b.ID) >= len(ref) && b.ID[:len(ref)] == ref {
				match = append(match, b)
			}
		}
		if len(match) == 1 {
			return match[0], nil
		}
	}
	if matches := fuzzy.FindFrom(ref, titles(l.books)); len(matches) > 0 {
		return l.books[matches[0].Index], nil
	}
	return book.Book{}, ErrBookNotFound
}

// must be called with lock held
func (l *Library) index(id string) int {
	for i, b := range l.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// must be called with lock held
func (l *Library) persist(ctx context.Context) {
	if err := l.store.Save(ctx, book.SanitizeAll(l.books)); err != nil {
		l.logger.Error("failed to save library", "err", err)
	}
}
