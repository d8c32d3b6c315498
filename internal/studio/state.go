package studio

import "github.com/vaysari11/Final-supernova/internal/book"

// transitions lists the legal paragraph status changes. StatusError is only
// passed through on the way back to idle; it is never left in place.
var transitions = map[book.Status][]book.Status{
	book.StatusIdle:       {book.StatusProcessing},
	book.StatusProcessing: {book.StatusIdle, book.StatusError},
	book.StatusError:      {book.StatusIdle, book.StatusProcessing},
}

func canTransition(from, to book.Status) bool {
	if from == "" {
		from = book.StatusIdle
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Event reports a paragraph status change.
type Event struct {
	BookID      string
	ParagraphID string
	From        book.Status
	To          book.Status
	Err         error // set on the transition into StatusError
}

// Observer receives paragraph events. It is called without locks held and
// may be called from several goroutines.
type Observer func(Event)
