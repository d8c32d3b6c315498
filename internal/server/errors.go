package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/cache"
	"github.com/vaysari11/Final-supernova/internal/clip"
	"github.com/vaysari11/Final-supernova/internal/extract"
	"github.com/vaysari11/Final-supernova/internal/library"
	"github.com/vaysari11/Final-supernova/internal/studio"
	"github.com/vaysari11/Final-supernova/internal/synth"
)

type errorBody struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, library.ErrBookNotFound),
		errors.Is(err, book.ErrParagraphNotFound),
		errors.Is(err, cache.ErrUnknownHandle):
		return fiber.StatusNotFound
	case errors.Is(err, book.ErrEmptyTitle),
		errors.Is(err, book.ErrUnknownVoice),
		errors.Is(err, clip.ErrUnsupportedHandle):
		return fiber.StatusBadRequest
	case errors.Is(err, studio.ErrNoProject):
		return fiber.StatusConflict
	case errors.Is(err, synth.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, extract.ErrExtractionFailed),
		errors.Is(err, book.ErrNothingToMerge),
		errors.Is(err, audio.ErrEmptyInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, synth.ErrSynthesisFailed),
		errors.Is(err, clip.ErrFetchFailed),
		errors.Is(err, clip.ErrDecodeFailed),
		errors.Is(err, audio.ErrIncompatibleFormats):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	msg := studio.UserMessage(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "status", code, "err", err)
	}
	return c.Status(code).JSON(errorBody{Error: msg})
}
