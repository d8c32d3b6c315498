package book

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyTitle is returned when a title is blank.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrNothingToMerge is returned when no paragraph has audio yet.
	ErrNothingToMerge = errors.New("no paragraph has audio")

	// ErrUnknownVoice is returned for a voice outside the catalogue.
	ErrUnknownVoice = errors.New("unknown voice")

	// ErrParagraphNotFound is returned when an ID matches no paragraph.
	ErrParagraphNotFound = errors.New("paragraph not found")
)

// Status is the synthesis state of a paragraph.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
)

// Paragraph is the unit of narration. ID and Text never change after creation.
type Paragraph struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Status   Status `json:"status" yaml:"status"`
	AudioURL string `json:"audioUrl,omitempty" yaml:"audioUrl,omitempty"`
}

// HasAudio reports whether the paragraph holds a clip handle.
func (p Paragraph) HasAudio() bool {
	return p.AudioURL != ""
}

// Book is a narrated work. Paragraph order is narration and merge order.
type Book struct {
	ID         string      `json:"id" yaml:"id"`
	Title      string      `json:"title" yaml:"title"`
	Author     string      `json:"author,omitempty" yaml:"author,omitempty"`
	CreatedAt  int64       `json:"createdAt" yaml:"createdAt"` // unix milliseconds
	Voice      Voice       `json:"voice" yaml:"voice"`
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`
}

// Created returns the creation time.
func (b Book) Created() time.Time {
	return time.UnixMilli(b.CreatedAt)
}

// New creates a book whose paragraphs are idle and have no audio.
func New(title, author string, voice Voice, texts []string, now time.Time) (Book, error) {
	if strings.TrimSpace(title) == "" {
		return Book{}, ErrEmptyTitle
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if !voice.Valid() {
		return Book{}, fmt.Errorf("%w: %q", ErrUnknownVoice, voice)
	}
	return Book{
		ID:         uuid.NewString(),
		Title:      title,
		Author:     author,
		CreatedAt:  now.UnixMilli(),
		Voice:      voice,
		Paragraphs: newParagraphs(texts),
	}, nil
}

func newParagraphs(texts []string) []Paragraph {
	out := make([]Paragraph, len(texts))
	for i, t := range texts {
		out[i] = Paragraph{ID: uuid.NewString(), Text: t, Status: StatusIdle}
	}
	return out
}

// Append returns b with new paragraphs after the existing ones. Existing
// paragraphs are carried over untouched.
func Append(b Book, texts []string) Book {
	paras := make([]Paragraph, 0, len(b.Paragraphs)+len(texts))
	paras = append(paras, b.Paragraphs...)
	paras = append(paras, newParagraphs(texts)...)
	b.Paragraphs = paras
	return b
}

// EditMetadata changes title and author. A blank title leaves b unchanged
// and returns ErrEmptyTitle.
func EditMetadata(b Book, title, author string) (Book, error) {
	if strings.TrimSpace(title) == "" {
		return b, ErrEmptyTitle
	}
	b.Title = title
	b.Author = author
	return b, nil
}

// Find returns the index of the paragraph with the given ID.
func (b Book) Find(id string) (int, bool) {
	for i, p := range b.Paragraphs {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Update returns b with the paragraph identified by id replaced by fn's
// result. The paragraph slice is copied; b's original slice is not touched.
func Update(b Book, id string, fn func(Paragraph) Paragraph) (Book, error) {
	i, ok := b.Find(id)
	if !ok {
		return b, ErrParagraphNotFound
	}
	paras := make([]Paragraph, len(b.Paragraphs))
	copy(paras, b.Paragraphs)

	p := fn(paras[i])
	p.ID, p.Text = paras[i].ID, paras[i].Text
	paras[i] = p

	b.Paragraphs = paras
	return b, nil
}

// Handles returns the audio handles in paragraph order, skipping paragraphs
// without audio.
func Handles(b Book) ([]string, error) {
	var handles []string
	for _, p := range b.Paragraphs {
		if p.HasAudio() {
			handles = append(handles, p.AudioURL)
		}
	}
	if len(handles) == 0 {
		return nil, ErrNothingToMerge
	}
	return handles, nil
}

// Progress returns how many paragraphs have audio.
func Progress(b Book) (narrated, total int) {
	for _, p := range b.Paragraphs {
		if p.HasAudio() {
			narrated++
		}
	}
	return narrated, len(b.Paragraphs)
}

var whitespace = regexp.MustCompile(`\s+`)

// DownloadFilename names the merged recording of a book with the given title.
func DownloadFilename(title string) string {
	return whitespace.ReplaceAllString(title, "_") + "_Full.wav"
}

// Sanitize strips runtime state: every paragraph becomes idle with no audio.
func Sanitize(b Book) Book {
	paras := make([]Paragraph, len(b.Paragraphs))
	for i, p := range b.Paragraphs {
		paras[i] = Paragraph{ID: p.ID, Text: p.Text, Status: StatusIdle}
	}
	b.Paragraphs = paras
	if b.Voice == "" {
		b.Voice = DefaultVoice
	}
	return b
}

// SanitizeAll applies Sanitize to every book.
func SanitizeAll(books []Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = Sanitize(b)
	}
	return out
}
