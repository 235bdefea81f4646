package ui

import "github.com/mark3labs/notekit/internal/app"

// noteResultMsg is returned by the command PromptForm.Submit hands out, once
// the submitter has answered.
type noteResultMsg struct {
	// seq is the submission this result belongs to.
	seq int
	// outcome is the line to show, or a discarded marker.
	outcome app.Outcome
}
