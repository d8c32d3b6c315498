package server

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/extract"
	"github.com/vaysari11/Final-supernova/internal/studio"
)

// bookRequest carries either typed text, explicit paragraphs or, in a
// multipart form, a document under "file".
type bookRequest struct {
	Title      string   `json:"title" form:"title"`
	Author     string   `json:"author" form:"author"`
	Voice      string   `json:"voice" form:"voice"`
	Text       string   `json:"text" form:"text"`
	Paragraphs []string `json:"paragraphs" form:"paragraphs"`
}

type metadataRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

type bookSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Voice      book.Voice `json:"voice"`
	CreatedAt  int64      `json:"createdAt"`
	Paragraphs int        `json:"paragraphs"`
	Narrated   int        `json:"narrated"`
}

func summarize(b book.Book) bookSummary {
	narrated, total := book.Progress(b)
	return bookSummary{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Voice:      b.Voice,
		CreatedAt:  b.CreatedAt,
		Paragraphs: total,
		Narrated:   narrated,
	}
}

func (s *Server) listVoices(c *fiber.Ctx) error {
	return c.JSON(book.Voices())
}

func (s *Server) listBooks(c *fiber.Ctx) error {
	books := s.studio.Project().Library().Books()
	out := make([]bookSummary, len(books))
	for i, b := range books {
		out[i] = summarize(b)
	}
	return c.JSON(out)
}

func (s *Server) getBook(c *fiber.Ctx) error {
	b, err := s.lookup(c)
	if err != nil {
		return err
	}
	if cur, ok := s.studio.Project().Current(); ok && cur.ID == b.ID {
		b = cur
	}
	return c.JSON(b)
}

func (s *Server) createBook(c *fiber.Ctx) error {
	req, res, err := s.readParagraphs(c)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = res.Title
	}
	voice, err := book.ParseVoice(req.Voice)
	if err != nil {
		return err
	}

	b, err := s.studio.Project().Create(c.UserContext(), title, req.Author, voice, res.Paragraphs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (s *Server) appendParagraphs(c *fiber.Ctx) error {
	if _, err := s.open(c); err != nil {
		return err
	}
	_, res, err := s.readParagraphs(c)
	if err != nil {
		return err
	}
	b, err := s.studio.Project().Append(c.UserContext(), res.Paragraphs)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (s *Server) editBook(c *fiber.Ctx) error {
	var req metadataRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	b, err := s.open(c)
	if err != nil {
		return err
	}

	title, author := b.Title, b.Author
	if req.Title != nil {
		title = *req.Title
	}
	if req.Author != nil {
		author = *req.Author
	}
	b, err = s.studio.Project().EditMetadata(c.UserContext(), title, author)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (s *Server) deleteBook(c *fiber.Ctx) error {
	b, err := s.lookup(c)
	if err != nil {
		return err
	}
	if err := s.studio.Project().Delete(c.UserContext(), b.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) openBook(c *fiber.Ctx) error {
	b, err := s.open(c)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (s *Server) currentBook(c *fiber.Ctx) error {
	b, ok := s.studio.Project().Current()
	if !ok {
		return studio.ErrNoProject
	}
	return c.JSON(b)
}

func (s *Server) narrate(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.studio.Narrate(c.UserContext(), id)
	if err != nil && !errors.Is(err, studio.ErrAlreadyProcessing) {
		return err
	}

	b, ok := s.studio.Project().Current()
	if !ok {
		return studio.ErrNoProject
	}
	i, ok := b.Find(id)
	if !ok {
		return book.ErrParagraphNotFound
	}
	if err != nil {
		// already in flight
		return c.Status(fiber.StatusAccepted).JSON(b.Paragraphs[i])
	}
	return c.JSON(b.Paragraphs[i])
}

func (s *Server) narrateAll(c *fiber.Ctx) error {
	var req struct {
		Paragraphs []string `json:"paragraphs"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
	}
	if err := s.studio.NarrateAll(c.UserContext(), req.Paragraphs...); err != nil {
		return err
	}
	b, _ := s.studio.Project().Current()
	return c.JSON(summarize(b))
}

func (s *Server) audio(c *fiber.Ctx) error {
	handle, err := url.PathUnescape(c.Params("handle"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid handle")
	}
	blob, err := s.studio.Blobs().Lookup(handle)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, blob.MediaType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(blob.Data)
}

func (s *Server) download(c *fiber.Ctx) error {
	d, err := s.studio.Download(c.UserContext())
	if err != nil {
		return err
	}
	c.Attachment(d.Name)
	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.Send(d.WAV)
}

func (s *Server) lookup(c *fiber.Ctx) (book.Book, error) {
	ref, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return book.Book{}, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return s.studio.Project().Library().Lookup(ref)
}

// open makes the book named in the path current, unless it already is.
func (s *Server) open(c *fiber.Ctx) (book.Book, error) {
	b, err := s.lookup(c)
	if err != nil {
		return book.Book{}, err
	}
	if cur, ok := s.studio.Project().Current(); ok && cur.ID == b.ID {
		return cur, nil
	}
	return s.studio.Project().Open(b.ID)
}

// readParagraphs reads a book request and resolves its paragraphs from an
// uploaded document, explicit paragraphs or typed text, in that order.
func (s *Server) readParagraphs(c *fiber.Ctx) (bookRequest, extract.Result, error) {
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return req, extract.Result{}, fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return req, extract.Result{}, err
		}
		defer f.Close() //nolint:errcheck

		data, err := io.ReadAll(f)
		if err != nil {
			return req, extract.Result{}, err
		}
		mediaType := fh.Header.Get(fiber.HeaderContentType)
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		res, err := s.studio.Extract(c.UserContext(), data, mediaType)
		return req, res, err
	}

	if len(req.Paragraphs) > 0 {
		var paras []string
		for _, p := range req.Paragraphs {
			paras = append(paras, extract.SplitText(p)...)
		}
		return req, extract.Result{Paragraphs: paras}, nil
	}
	res, err := s.studio.Extract(c.UserContext(), []byte(req.Text), "text/plain")
	return req, res, err
}
