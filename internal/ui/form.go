package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/notekit/internal/app"
)

const (
	formTitle       = "🧠 Notion Note Agent"
	formPlaceholder = "e.g. Create a note summarizing today's design review..."
	submitLabel     = "Create Note in Notion"
	submittingLabel = "Creating Note..."

	// formRows is the number of visible textarea lines.
	formRows = 6
	// formMaxWidth caps the card width on wide terminals.
	formMaxWidth = 64
	// formMinWidth keeps the card usable on narrow terminals.
	formMinWidth = 30
)

// Submitter sends a prompt to the note service and reports the single line
// of text that describes the outcome. It blocks, so the form only ever calls
// it from inside a tea.Cmd. *app.App satisfies it.
type Submitter interface {
	CreateNote(prompt string) app.Outcome
}

// formKeyMap lists the bindings shown in the help line.
type formKeyMap struct {
	Submit  key.Binding
	Newline key.Binding
	Quit    key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.Quit}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultFormKeys() formKeyMap {
	return formKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter", "ctrl+s"),
			key.WithHelp("enter", "create note"),
		),
		Newline: key.NewBinding(
			key.WithKeys("ctrl+j", "alt+enter"),
			key.WithHelp("ctrl+j", "new line"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// PromptForm is the note submission widget. It owns the prompt text, the
// in-flight flag and the result line, and is idle or submitting; there is no
// separate success or error state.
//
// All state changes happen in Update on the Bubble Tea event goroutine. The
// outbound call runs in a tea.Cmd and comes back as a noteResultMsg. While a
// request is in flight the submit trigger is disabled, so at most one request
// exists at a time; the prompt stays editable.
type PromptForm struct {
	textarea  textarea.Model
	submitter Submitter
	keys      formKeyMap
	help      help.Model

	// prompt is the source of truth for the text. It mirrors the textarea
	// after user edits and is set verbatim by SetPrompt.
	prompt    string
	lastValue string

	submitting bool
	result     string
	failed     bool

	// seq identifies the in-flight submission; results carrying another
	// seq are stale and dropped.
	seq int
	// closed is set on teardown; nothing is written afterwards.
	closed bool

	width int
}

// NewPromptForm creates an idle form with an empty prompt. width is the
// available terminal width; the card is capped at formMaxWidth.
func NewPromptForm(submitter Submitter, width int) *PromptForm {
	ta := textarea.New()
	ta.Placeholder = formPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetHeight(formRows)

	// Enter is the submit trigger; only ctrl+j and alt+enter insert newlines.
	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("ctrl+j", "alt+enter"),
		key.WithHelp("ctrl+j", "insert newline"),
	)

	theme := GetTheme()
	styles := ta.Styles()
	styles.Focused.Base = lipgloss.NewStyle()
	styles.Focused.Placeholder = lipgloss.NewStyle().Foreground(theme.VeryMuted)
	styles.Focused.Text = lipgloss.NewStyle().Foreground(theme.Text)
	styles.Focused.Prompt = lipgloss.NewStyle()
	styles.Focused.CursorLine = lipgloss.NewStyle()
	ta.SetStyles(styles)
	ta.Focus()

	f := &PromptForm{
		textarea:  ta,
		submitter: submitter,
		keys:      defaultFormKeys(),
		help:      help.New(),
	}
	f.SetWidth(width)
	return f
}

// Prompt returns the current prompt text, untrimmed.
func (f *PromptForm) Prompt() string { return f.prompt }

// Submitting reports whether a request is in flight.
func (f *PromptForm) Submitting() bool { return f.submitting }

// SubmitDisabled reports whether the submit trigger is disabled. It is
// exactly Submitting.
func (f *PromptForm) SubmitDisabled() bool { return f.submitting }

// Result returns the line shown in the result region, "" when hidden.
func (f *PromptForm) Result() string { return f.result }

// Closed reports whether the form was torn down.
func (f *PromptForm) Closed() bool { return f.closed }

// SetPrompt replaces the prompt verbatim. No validation happens here, and an
// in-flight request keeps the text it was sent with. A later edit in the
// textarea makes the prompt mirror the textarea again, tabs expanded.
func (f *PromptForm) SetPrompt(text string) {
	f.prompt = text
	f.textarea.SetValue(text)
	f.lastValue = f.textarea.Value()
}

// SetWidth resizes the card for a terminal of the given width.
func (f *PromptForm) SetWidth(termWidth int) {
	w := min(termWidth-4, formMaxWidth)
	f.width = max(w, formMinWidth)
	// Card border (2) and horizontal padding (4).
	f.textarea.SetWidth(f.width - 6)
}

// Submit activates the trigger. Blank prompts are a silent no-op, and so is
// a call while the trigger is disabled. Otherwise the form enters the
// submitting state, clears the previous result and returns the command that
// performs exactly one request.
func (f *PromptForm) Submit() tea.Cmd {
	if f.closed || f.SubmitDisabled() {
		return nil
	}
	if strings.TrimSpace(f.prompt) == "" {
		return nil
	}

	f.submitting = true
	f.result = ""
	f.failed = false
	f.seq++
	return f.dispatch(f.seq, f.prompt)
}

// dispatch builds the request command. prompt is captured by value so later
// edits do not reach the request. A panic while producing the outcome is
// still turned into a result message, so the in-flight flag always clears.
func (f *PromptForm) dispatch(seq int, prompt string) tea.Cmd {
	submitter := f.submitter
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = noteResultMsg{
					seq:     seq,
					outcome: app.Outcome{Text: app.ErrorPrefix + fmt.Sprint(r), Failed: true},
				}
			}
		}()
		return noteResultMsg{seq: seq, outcome: submitter.CreateNote(prompt)}
	}
}

// Close tears the form down. Results that arrive later are ignored.
func (f *PromptForm) Close() {
	f.closed = true
	f.textarea.Blur()
}

// Init implements tea.Model. Starts the cursor blink animation.
func (f *PromptForm) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (f *PromptForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case noteResultMsg:
		f.applyResult(msg)
		return f, nil

	case tea.WindowSizeMsg:
		f.SetWidth(msg.Width)
		return f, nil

	case tea.PasteMsg:
		if f.closed {
			return f, nil
		}
		// The textarea turns \r and \n into separate line breaks, so a CRLF
		// paste would otherwise gain a blank line per break.
		msg.Content = normalizeNewlines(msg.Content)
		return f.updateTextarea(msg)

	case tea.KeyPressMsg:
		if f.closed {
			return f, nil
		}
		if key.Matches(msg, f.keys.Submit) {
			return f, f.Submit()
		}
	}

	return f.updateTextarea(msg)
}

// updateTextarea forwards msg to the textarea and picks up any edit it made.
func (f *PromptForm) updateTextarea(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	f.textarea, cmd = f.textarea.Update(msg)
	if v := f.textarea.Value(); v != f.lastValue {
		f.lastValue = v
		f.prompt = v
	}
	return f, cmd
}

// normalizeNewlines rewrites CRLF and lone CR line endings as LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// applyResult completes the in-flight submission. The flag is cleared before
// the result is written; stale and post-teardown results change nothing.
func (f *PromptForm) applyResult(msg noteResultMsg) {
	if f.closed || !f.submitting || msg.seq != f.seq {
		return
	}
	f.submitting = false
	if msg.outcome.Discarded {
		return
	}
	f.result = msg.outcome.Text
	f.failed = msg.outcome.Failed
}

// View implements tea.Model.
func (f *PromptForm) View() tea.View {
	return tea.NewView(f.Render())
}

// Render draws the card: heading, textarea, trigger, the result region when
// there is a result, and the key help line.
func (f *PromptForm) Render() string {
	theme := GetTheme()
	inner := f.width - 6

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		Width(inner)
	if f.textarea.Focused() {
		inputBox = inputBox.BorderForeground(theme.Primary)
	}

	parts := []string{
		StyleHeader(theme).MarginBottom(1).Render(formTitle),
		inputBox.Render(f.textarea.View()),
		f.renderButton(inner),
	}
	if f.result != "" {
		parts = append(parts, f.renderResult(inner))
	}
	parts = append(parts, StyleMuted(theme).MarginTop(1).Render(f.help.ShortHelpView(f.keys.ShortHelp())))

	return StyleCard(f.width, theme).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderButton draws the trigger. Its look follows SubmitDisabled.
func (f *PromptForm) renderButton(width int) string {
	theme := GetTheme()
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		MarginTop(1).
		Bold(true)

	label := submitLabel
	if f.SubmitDisabled() {
		label = submittingLabel
		style = style.Foreground(theme.Muted).Background(theme.MutedBorder)
	} else {
		style = style.Foreground(theme.OnPrimary).Background(theme.Primary)
	}
	return style.Render(label)
}

// renderResult draws the result line verbatim inside a bordered box.
func (f *PromptForm) renderResult(width int) string {
	theme := GetTheme()
	border := theme.MutedBorder
	if f.failed {
		border = theme.Error
	}
	return lipgloss.NewStyle().
		Width(width).
		MarginTop(1).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(theme.Text).
		Render(f.result)
}
