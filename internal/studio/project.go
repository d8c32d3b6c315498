package studio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/library"
)

// Project is the currently open book. Each change replaces the book's
// paragraph slice wholesale, so a Book returned by Current is never seen
// half-updated.
type Project struct {
	lib *library.Library
	now func() time.Time

	mu       sync.Mutex
	current  *book.Book
	inflight map[string]bool // paragraph IDs being narrated, across books
}

func NewProject(lib *library.Library) *Project {
	return &Project{lib: lib, now: time.Now, inflight: make(map[string]bool)}
}

// Library returns the library backing the project.
func (p *Project) Library() *library.Library { return p.lib }

// Current returns the open book.
func (p *Project) Current() (book.Book, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return book.Book{}, false
	}
	return *p.current, true
}

// Open makes the book with the given ID current. Paragraphs still being
// narrated from an earlier visit show as processing; all others are idle.
func (p *Project) Open(id string) (book.Book, error) {
	b, err := p.lib.Get(id)
	if err != nil {
		return book.Book{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	paras := make([]book.Paragraph, len(b.Paragraphs))
	for i, q := range b.Paragraphs {
		if p.inflight[q.ID] {
			q.Status = book.StatusProcessing
		} else {
			q.Status = book.StatusIdle
		}
		paras[i] = q
	}
	b.Paragraphs = paras
	p.current = &b
	return b, nil
}

// Close forgets the current book.
func (p *Project) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}

// Create adds a new book to the library and opens it.
func (p *Project) Create(ctx context.Context, title, author string, voice book.Voice, texts []string) (book.Book, error) {
	b, err := book.New(title, author, voice, texts, p.now())
	if err != nil {
		return book.Book{}, err
	}
	p.lib.Add(ctx, b)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &b
	return b, nil
}

// Append adds paragraphs to the current book.
func (p *Project) Append(ctx context.Context, texts []string) (book.Book, error) {
	return p.modify(ctx, func(b book.Book) (book.Book, error) {
		return book.Append(b, texts), nil
	})
}

// EditMetadata changes the current book's title and author.
func (p *Project) EditMetadata(ctx context.Context, title, author string) (book.Book, error) {
	return p.modify(ctx, func(b book.Book) (book.Book, error) {
		return book.EditMetadata(b, title, author)
	})
}

// Delete removes a book from the library, closing it if it is open.
func (p *Project) Delete(ctx context.Context, id string) error {
	if err := p.lib.Delete(ctx, id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.ID == id {
		p.current = nil
	}
	return nil
}

func (p *Project) modify(ctx context.Context, fn func(book.Book) (book.Book, error)) (book.Book, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return book.Book{}, ErrNoProject
	}
	b, err := fn(*p.current)
	if err != nil {
		return *p.current, err
	}
	p.current = &b
	if err := p.lib.Put(ctx, b); err != nil {
		return b, fmt.Errorf("failed to store book: %w", err)
	}
	return b, nil
}

// begin moves a paragraph of the current book from idle to processing.
func (p *Project) begin(paragraphID string) (book.Book, book.Paragraph, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return book.Book{}, book.Paragraph{}, ErrNoProject
	}
	i, ok := p.current.Find(paragraphID)
	if !ok {
		return book.Book{}, book.Paragraph{}, book.ErrParagraphNotFound
	}
	para := p.current.Paragraphs[i]
	if para.Status == book.StatusProcessing || p.inflight[paragraphID] {
		return *p.current, para, ErrAlreadyProcessing
	}
	if !canTransition(para.Status, book.StatusProcessing) {
		return *p.current, para, fmt.Errorf("paragraph %s cannot start from %s", paragraphID, para.Status)
	}

	b, err := book.Update(*p.current, paragraphID, func(q book.Paragraph) book.Paragraph {
		q.Status = book.StatusProcessing
		return q
	})
	if err != nil {
		return book.Book{}, book.Paragraph{}, err
	}
	p.current = &b
	p.inflight[paragraphID] = true
	return b, para, nil
}

// finish folds a paragraph back to idle. A non-empty handle replaces the
// paragraph's audio; an empty one keeps whatever it had. The paragraph is
// located by ID in the current book, or in the library when another book
// has been opened meanwhile. The paragraph is written back to the library
// either way, since an edit made while narrating may have stored it as
// processing.
func (p *Project) finish(ctx context.Context, bookID, paragraphID, handle string) (previous string, err error) {
	apply := func(q book.Paragraph) book.Paragraph {
		previous = q.AudioURL
		q.Status = book.StatusIdle
		if handle != "" {
			q.AudioURL = handle
		}
		return q
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.inflight, paragraphID)
	if p.current != nil && p.current.ID == bookID {
		b, err := book.Update(*p.current, paragraphID, apply)
		if err != nil {
			return "", err
		}
		p.current = &b
		return previous, p.lib.Put(ctx, b)
	}

	b, err := p.lib.Get(bookID)
	if err != nil {
		return "", err
	}
	if b, err = book.Update(b, paragraphID, apply); err != nil {
		return "", err
	}
	return previous, p.lib.Put(ctx, b)
}
