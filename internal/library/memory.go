package library

import (
	"context"
	"sync"

	"github.com/vaysari11/Final-supernova/internal/book"
)

// MemoryStore keeps the library in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	books []book.Book
	saved bool
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return nil, nil
	}
	return cloneBooks(s.books), nil
}

func (s *MemoryStore) Save(_ context.Context, books []book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = cloneBooks(books)
	s.saved = true
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneBooks(in []book.Book) []book.Book {
	out := make([]book.Book, len(in))
	for i, b := range in {
		b.Paragraphs = append([]book.Paragraph(nil), b.Paragraphs...)
		out[i] = b
	}
	return out
}
