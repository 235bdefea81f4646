package app

import (
	"github.com/mark3labs/notekit/internal/notes"
)

// FallbackSuccess is shown when the service reports success without a result.
// An empty result and an absent one read the same.
const FallbackSuccess = "Note created successfully!"

// ErrorPrefix starts every failure line.
const ErrorPrefix = "❌ Error: "

// Outcome is the single line of text a completed submission produces.
type Outcome struct {
	// Text is shown verbatim in the result region.
	Text string
	// Failed is true when Text starts with ErrorPrefix.
	Failed bool
	// Discarded is true when the submission finished after teardown. Text is
	// empty and the outcome must not be applied.
	Discarded bool
}

// Describe turns a client result into the line shown to the user. On failure
// the service-provided detail wins over the generic error description.
func Describe(note *notes.Note, err error) Outcome {
	if err != nil {
		msg, ok := notes.DetailOf(err)
		if !ok {
			msg = err.Error()
		}
		if msg == "" {
			msg = "request failed"
		}
		return Outcome{Text: ErrorPrefix + msg, Failed: true}
	}
	if note == nil || note.Result == "" {
		return Outcome{Text: FallbackSuccess}
	}
	return Outcome{Text: note.Result}
}
