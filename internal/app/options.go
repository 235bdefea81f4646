package app

import (
	"github.com/charmbracelet/log"

	"github.com/mark3labs/notekit/internal/notes"
)

// Options configures an App instance.
type Options struct {
	// Creator performs the outbound request. Required. *notes.Client
	// satisfies it; tests supply stubs.
	Creator notes.Creator

	// Logger receives submission diagnostics. Nil discards them.
	Logger *log.Logger
}
