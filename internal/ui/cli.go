package ui

import (
	"io"

	"charm.land/lipgloss/v2"

	"github.com/mark3labs/notekit/internal/app"
)

// RenderOutcome styles a one-shot result line. The text itself is unchanged;
// failures are drawn in the error color and successes in the success color.
func RenderOutcome(out app.Outcome) string {
	theme := GetTheme()
	if out.Failed {
		return StyleError(theme).Render(out.Text)
	}
	return StyleSuccess(theme).Render(out.Text)
}

// PrintOutcome writes the styled result line to w. Colors are downsampled to
// what w supports, so piped output is plain text.
func PrintOutcome(w io.Writer, out app.Outcome) error {
	_, err := lipgloss.Fprintln(w, RenderOutcome(out))
	return err
}
