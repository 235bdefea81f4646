package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/notekit/internal/app"
	"github.com/mark3labs/notekit/internal/notes"
)

// --------------------------------------------------------------------------
// Stubs and helpers
// --------------------------------------------------------------------------

// stubSubmitter records prompts and answers with a fixed outcome.
type stubSubmitter struct {
	mu      sync.Mutex
	prompts []string
	outcome app.Outcome
	panicV  any
}

func (s *stubSubmitter) CreateNote(prompt string) app.Outcome {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.panicV != nil {
		panic(s.panicV)
	}
	return s.outcome
}

func (s *stubSubmitter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// stubCreator is a notes.Creator for wiring a real app.App under the form.
type stubCreator struct {
	note *notes.Note
	err  error
}

func (s stubCreator) CreateNote(context.Context, string) (*notes.Note, error) {
	return s.note, s.err
}

func newTestForm(s Submitter) *PromptForm {
	return NewPromptForm(s, 80)
}

// newAppForm builds a form on top of a real app.App backed by creator.
func newAppForm(t *testing.T, creator notes.Creator) *PromptForm {
	t.Helper()
	a := app.New(app.Options{Creator: creator})
	t.Cleanup(a.Close)
	return newTestForm(a)
}

// sendFormMsg calls f.Update once and returns the command it produced.
func sendFormMsg(f *PromptForm, msg tea.Msg) tea.Cmd {
	_, cmd := f.Update(msg)
	return cmd
}

// runCmd executes cmd and returns its message, or nil for a nil cmd.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// submitAndResolve submits the form's prompt, runs the request command and
// feeds the result back, returning false when nothing was dispatched.
func submitAndResolve(t *testing.T, f *PromptForm) bool {
	t.Helper()
	cmd := f.Submit()
	if cmd == nil {
		return false
	}
	if !f.Submitting() {
		t.Fatal("form must be submitting before the request resolves")
	}
	sendFormMsg(f, runCmd(cmd))
	return true
}

// assertTriggerMirrorsFlag checks that the trigger's disabled state, both
// functionally and visually, matches the in-flight flag.
func assertTriggerMirrorsFlag(t *testing.T, f *PromptForm) {
	t.Helper()
	if f.SubmitDisabled() != f.Submitting() {
		t.Fatalf("SubmitDisabled() = %v but Submitting() = %v", f.SubmitDisabled(), f.Submitting())
	}
	view := f.Render()
	if f.Submitting() {
		if !strings.Contains(view, submittingLabel) || strings.Contains(view, submitLabel) {
			t.Fatalf("busy trigger should read %q", submittingLabel)
		}
	} else if !strings.Contains(view, submitLabel) {
		t.Fatalf("idle trigger should read %q", submitLabel)
	}
}

var enterKey = tea.KeyPressMsg{Code: tea.KeyEnter}

// --------------------------------------------------------------------------
// Initial state
// --------------------------------------------------------------------------

func TestPromptForm_InitialState(t *testing.T) {
	f := newTestForm(&stubSubmitter{})
	if f.Prompt() != "" || f.Submitting() || f.Result() != "" {
		t.Fatalf("unexpected initial state: prompt=%q submitting=%v result=%q",
			f.Prompt(), f.Submitting(), f.Result())
	}
	view := f.Render()
	for _, want := range []string{formTitle, submitLabel, "create note"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	assertTriggerMirrorsFlag(t, f)
}

// --------------------------------------------------------------------------
// Blank prompts never leave the widget
// --------------------------------------------------------------------------

func TestPromptForm_BlankPromptIsNoop(t *testing.T) {
	for _, prompt := range []string{"", " ", "\n\n", " \t \n "} {
		stub := &stubSubmitter{outcome: app.Outcome{Text: "unexpected"}}
		f := newTestForm(stub)
		f.SetPrompt(prompt)
		f.result = "previous result"

		if cmd := f.Submit(); cmd != nil {
			t.Fatalf("Submit(%q) returned a command", prompt)
		}
		if cmd := sendFormMsg(f, enterKey); runCmd(cmd) != nil {
			t.Fatalf("enter on %q produced a message", prompt)
		}

		if stub.calls() != 0 {
			t.Fatalf("prompt %q reached the submitter", prompt)
		}
		if f.Submitting() {
			t.Fatalf("prompt %q flipped the in-flight flag", prompt)
		}
		if f.Result() != "previous result" {
			t.Fatalf("prompt %q changed the result to %q", prompt, f.Result())
		}
	}
}

// --------------------------------------------------------------------------
// Submission lifecycle
// --------------------------------------------------------------------------

func TestPromptForm_SubmitEntersFlightSynchronously(t *testing.T) {
	stub := &stubSubmitter{outcome: app.Outcome{Text: "Saved page X"}}
	f := newTestForm(stub)
	f.SetPrompt("  summarize the review  ")
	f.result = "stale"

	cmd := sendFormMsg(f, enterKey)
	if cmd == nil {
		t.Fatal("expected a request command")
	}
	if !f.Submitting() {
		t.Fatal("Submitting() must be true before the request resolves")
	}
	if f.Result() != "" {
		t.Fatalf("previous result should be cleared, got %q", f.Result())
	}
	if stub.calls() != 0 {
		t.Fatal("the request must run inside the command, not in Update")
	}
	assertTriggerMirrorsFlag(t, f)

	sendFormMsg(f, runCmd(cmd))

	if got := stub.prompts; len(got) != 1 || got[0] != "  summarize the review  " {
		t.Fatalf("expected one untrimmed request, got %q", got)
	}
	if f.Submitting() {
		t.Fatal("Submitting() must be false after resolution")
	}
	if f.Result() != "Saved page X" {
		t.Fatalf("Result() = %q", f.Result())
	}
	assertTriggerMirrorsFlag(t, f)
	if !strings.Contains(f.Render(), "Saved page X") {
		t.Fatal("result region should show the result verbatim")
	}
}

func TestPromptForm_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		creator notes.Creator
		want    string
	}{
		{
			name:    "server result",
			creator: stubCreator{note: &notes.Note{Result: "Saved page X"}},
			want:    "Saved page X",
		},
		{
			name:    "empty body falls back",
			creator: stubCreator{note: &notes.Note{}},
			want:    "Note created successfully!",
		},
		{
			name:    "service detail",
			creator: stubCreator{err: &notes.ServiceError{StatusCode: 401, Detail: "Invalid token"}},
			want:    "❌ Error: Invalid token",
		},
		{
			name:    "generic error",
			creator: stubCreator{err: errors.New("connection refused")},
			want:    "❌ Error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppForm(t, tt.creator)
			f.SetPrompt("note this")
			if !submitAndResolve(t, f) {
				t.Fatal("nothing was dispatched")
			}
			if f.Result() != tt.want {
				t.Fatalf("Result() = %q, want %q", f.Result(), tt.want)
			}
			if f.Submitting() {
				t.Fatal("in-flight flag left set")
			}
			assertTriggerMirrorsFlag(t, f)
		})
	}
}

// TestPromptForm_OverHTTP drives the form through the real client against
// live and dead endpoints.
func TestPromptForm_OverHTTP(t *testing.T) {
	handler := func(status int, body string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		})
	}

	tests := []struct {
		name       string
		handler    http.Handler
		dead       bool
		want       string
		wantPrefix string
	}{
		{name: "result", handler: handler(200, `{"result":"Saved page X"}`), want: "Saved page X"},
		{name: "empty object", handler: handler(200, `{}`), want: "Note created successfully!"},
		{name: "detail", handler: handler(401, `{"detail":"Invalid token"}`), want: "❌ Error: Invalid token"},
		{name: "bare 500", handler: handler(500, ``), want: "❌ Error: request failed with status code 500"},
		{name: "connection refused", dead: true, wantPrefix: "❌ Error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			if tt.dead {
				srv.Close()
			} else {
				defer srv.Close()
			}

			client, err := notes.NewClient(notes.ClientOptions{Endpoint: srv.URL})
			if err != nil {
				t.Fatal(err)
			}
			f := newAppForm(t, client)
			f.SetPrompt("note this")
			if !submitAndResolve(t, f) {
				t.Fatal("nothing was dispatched")
			}

			if f.Submitting() {
				t.Fatal("in-flight flag left set")
			}
			if tt.want != "" && f.Result() != tt.want {
				t.Fatalf("Result() = %q, want %q", f.Result(), tt.want)
			}
			if tt.wantPrefix != "" {
				if !strings.HasPrefix(f.Result(), tt.wantPrefix) || len(f.Result()) == len(tt.wantPrefix) {
					t.Fatalf("Result() = %q, want %q followed by a description", f.Result(), tt.wantPrefix)
				}
			}
		})
	}
}

func TestPromptForm_PanicStillClearsFlag(t *testing.T) {
	f := newTestForm(&stubSubmitter{panicV: "formatter exploded"})
	f.SetPrompt("p")
	if !submitAndResolve(t, f) {
		t.Fatal("nothing was dispatched")
	}
	if f.Submitting() {
		t.Fatal("in-flight flag must clear even when the outcome panics")
	}
	if !strings.HasPrefix(f.Result(), app.ErrorPrefix) {
		t.Fatalf("Result() = %q, want error prefix", f.Result())
	}
}

// --------------------------------------------------------------------------
// Disabled trigger and in-flight edits
// --------------------------------------------------------------------------

func TestPromptForm_TriggerDisabledWhileSubmitting(t *testing.T) {
	stub := &stubSubmitter{outcome: app.Outcome{Text: "done"}}
	f := newTestForm(stub)
	f.SetPrompt("first")

	cmd := f.Submit()
	if cmd == nil {
		t.Fatal("expected a request command")
	}
	seq := f.seq

	if f.Submit() != nil {
		t.Fatal("Submit while disabled must not dispatch")
	}
	if sendFormMsg(f, enterKey) != nil {
		t.Fatal("enter while disabled must not dispatch")
	}
	if f.seq != seq {
		t.Fatal("a disabled trigger must not start a new submission")
	}
	assertTriggerMirrorsFlag(t, f)

	sendFormMsg(f, runCmd(cmd))
	if stub.calls() != 1 {
		t.Fatalf("expected exactly one request, got %d", stub.calls())
	}
	assertTriggerMirrorsFlag(t, f)
}

func TestPromptForm_EditsDuringFlightKeepDispatchedBody(t *testing.T) {
	stub := &stubSubmitter{outcome: app.Outcome{Text: "done"}}
	f := newTestForm(stub)
	f.SetPrompt("original")

	cmd := f.Submit()
	f.SetPrompt("edited while waiting")
	sendFormMsg(f, runCmd(cmd))

	if stub.prompts[0] != "original" {
		t.Fatalf("dispatched body changed to %q", stub.prompts[0])
	}
	if f.Prompt() != "edited while waiting" {
		t.Fatalf("edit was lost: %q", f.Prompt())
	}
}

func TestPromptForm_TextareaEditsUpdatePrompt(t *testing.T) {
	f := newTestForm(&stubSubmitter{})
	f.textarea.SetValue("typed by hand")
	sendFormMsg(f, struct{}{})
	if f.Prompt() != "typed by hand" {
		t.Fatalf("Prompt() = %q", f.Prompt())
	}
}

// --------------------------------------------------------------------------
// Result region
// --------------------------------------------------------------------------

func TestPromptForm_ResultRegionPresence(t *testing.T) {
	f := newTestForm(&stubSubmitter{outcome: app.Outcome{Text: "Saved page X"}})
	if strings.Contains(f.Render(), "Saved page X") {
		t.Fatal("result region must be absent before the first submission")
	}

	f.SetPrompt("p")
	submitAndResolve(t, f)
	if !strings.Contains(f.Render(), "Saved page X") {
		t.Fatal("result region must be present after completion")
	}

	f.Submit()
	if strings.Contains(f.Render(), "Saved page X") {
		t.Fatal("stale result must not linger during a new request")
	}
}

// --------------------------------------------------------------------------
// Teardown and stale results
// --------------------------------------------------------------------------

func TestPromptForm_ResultAfterCloseIsIgnored(t *testing.T) {
	f := newTestForm(&stubSubmitter{outcome: app.Outcome{Text: "late"}})
	f.SetPrompt("p")
	cmd := f.Submit()

	f.Close()
	sendFormMsg(f, runCmd(cmd))

	if f.Result() != "" {
		t.Fatalf("late result was written after teardown: %q", f.Result())
	}
	if f.Submit() != nil {
		t.Fatal("a closed form must not dispatch")
	}
}

func TestPromptForm_DiscardedOutcome(t *testing.T) {
	f := newTestForm(&stubSubmitter{outcome: app.Outcome{Discarded: true}})
	f.SetPrompt("p")
	submitAndResolve(t, f)
	if f.Submitting() {
		t.Fatal("in-flight flag left set")
	}
	if f.Result() != "" {
		t.Fatalf("discarded outcome produced %q", f.Result())
	}
}

func TestPromptForm_StaleSequenceIgnored(t *testing.T) {
	f := newTestForm(&stubSubmitter{})
	f.SetPrompt("p")
	f.Submit()

	sendFormMsg(f, noteResultMsg{seq: f.seq - 1, outcome: app.Outcome{Text: "old"}})
	if !f.Submitting() || f.Result() != "" {
		t.Fatal("a result for another submission must not complete this one")
	}
}

func TestPromptForm_PasteNormalizesLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		paste string
		want  string
	}{
		{name: "crlf", paste: "a\r\nb", want: "a\nb"},
		{name: "lone cr", paste: "a\rb", want: "a\nb"},
		{name: "lf", paste: "a\nb", want: "a\nb"},
		{name: "mixed", paste: "one\r\ntwo\rthree\nfour", want: "one\ntwo\nthree\nfour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSubmitter{outcome: app.Outcome{Text: "done"}}
			f := newTestForm(stub)
			sendFormMsg(f, tea.PasteMsg{Content: tt.paste})

			if f.Prompt() != tt.want {
				t.Fatalf("Prompt() = %q, want %q", f.Prompt(), tt.want)
			}
			submitAndResolve(t, f)
			if stub.prompts[0] != tt.want {
				t.Fatalf("sent %q, want %q", stub.prompts[0], tt.want)
			}
		})
	}
}

func TestPromptForm_PasteIgnoredAfterClose(t *testing.T) {
	f := newTestForm(&stubSubmitter{})
	f.Close()
	sendFormMsg(f, tea.PasteMsg{Content: "late"})
	if f.Prompt() != "" {
		t.Fatalf("Prompt() = %q after teardown", f.Prompt())
	}
}
