package studio

import (
	"errors"
	"time"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/clip"
	"github.com/vaysari11/Final-supernova/internal/extract"
	"github.com/vaysari11/Final-supernova/internal/synth"
)

var (
	// ErrAlreadyProcessing is returned, as a no-op, when a paragraph is
	// already being narrated.
	ErrAlreadyProcessing = errors.New("paragraph is already being narrated")

	// ErrNoProject is returned when an operation needs an open book.
	ErrNoProject = errors.New("no project is open")
)

// Components reported in Error.
const (
	ComponentExtraction = "extraction"
	ComponentSynthesis  = "synthesis"
	ComponentMerge      = "merge"
)

// Error records where a studio operation failed.
type Error struct {
	Err         error  // The underlying error
	Component   string // extraction, synthesis or merge
	Action      string // Action being performed when the error occurred
	BookID      string
	ParagraphID string
	Timestamp   int64 // Unix timestamp when the error occurred
}

func newError(err error, component, action string) *Error {
	return &Error{Err: err, Component: component, Action: action, Timestamp: time.Now().Unix()}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Component + ": unknown error"
	}
	return e.Component + ": " + e.Action + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether retrying the same action may succeed.
func (e *Error) IsRecoverable() bool {
	switch {
	case errors.Is(e.Err, synth.ErrRateLimited),
		errors.Is(e.Err, synth.ErrSynthesisFailed),
		errors.Is(e.Err, clip.ErrFetchFailed):
		return true
	case errors.Is(e.Err, book.ErrNothingToMerge),
		errors.Is(e.Err, audio.ErrEmptyInput):
		// recoverable once some audio is generated
		return true
	default:
		return false
	}
}

// User-facing messages.
const (
	MsgExtractionFailed = "OCR Failed. Try a clearer scan."
	MsgRateLimited      = "Rate limit! Please wait 30s."
	MsgSynthesisFailed  = "Synthesis failed."
	MsgNothingToMerge   = "Generate some audio parts first!"
	MsgMergeFailed      = "Merging failed. Ensure all parts are generated correctly."
	MsgNoProject        = "Open a project first."
)

// UserMessage maps an error to the single message shown to the user. It
// returns "" for a nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *Error
	component := ""
	if errors.As(err, &se) {
		component = se.Component
	}

	switch {
	case errors.Is(err, extract.ErrExtractionFailed):
		return MsgExtractionFailed
	case errors.Is(err, synth.ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, book.ErrNothingToMerge), errors.Is(err, audio.ErrEmptyInput):
		return MsgNothingToMerge
	case errors.Is(err, clip.ErrFetchFailed),
		errors.Is(err, clip.ErrDecodeFailed),
		errors.Is(err, audio.ErrIncompatibleFormats),
		component == ComponentMerge:
		return MsgMergeFailed
	case errors.Is(err, synth.ErrSynthesisFailed), component == ComponentSynthesis:
		return MsgSynthesisFailed
	case errors.Is(err, ErrNoProject):
		return MsgNoProject
	default:
		return err.Error()
	}
}
