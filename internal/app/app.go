package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrEmptyPrompt is returned by RunOnce for a prompt that is empty after
// trimming. Nothing is sent.
var ErrEmptyPrompt = errors.New("prompt is empty")

// ErrClosed is returned by RunOnce after Close.
var ErrClosed = errors.New("app is closed")

// App binds note submissions to a lifetime. It is created once per process
// and shared by the interactive widget and the one-shot path.
//
// App satisfies the ui.Submitter interface defined in internal/ui/form.go:
//
//	CreateNote(prompt string) Outcome
type App struct {
	opts   Options
	logger *log.Logger

	// mu protects closed and the wg.Add that pairs with it.
	mu     sync.Mutex
	closed bool

	// wg tracks in-flight submissions; Close waits on it.
	wg sync.WaitGroup

	// rootCtx is cancelled by Close, aborting in-flight requests.
	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// New creates an App. opts.Creator must be non-nil.
func New(opts Options) *App {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &App{
		opts:       opts,
		logger:     logger.WithPrefix("app"),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
}

// CreateNote sends prompt as-is and blocks until the service answers. It never
// returns an error: every failure is folded into the Outcome text. After Close,
// or when Close interrupts the request, the Outcome is Discarded.
//
// Callers are expected to have rejected blank prompts already; the widget
// does so before it flips its in-flight flag.
//
// Satisfies ui.Submitter.
func (a *App) CreateNote(prompt string) Outcome {
	ctx, ok := a.begin()
	if !ok {
		return Outcome{Discarded: true}
	}
	defer a.wg.Done()

	return a.submit(ctx, prompt)
}

// RunOnce performs a single submission for non-interactive use. ctx may cut
// the request short in addition to Close. The returned Outcome carries the
// line to print; err is only set when nothing was attempted.
func (a *App) RunOnce(ctx context.Context, prompt string) (Outcome, error) {
	if strings.TrimSpace(prompt) == "" {
		return Outcome{}, ErrEmptyPrompt
	}

	rootCtx, ok := a.begin()
	if !ok {
		return Outcome{}, ErrClosed
	}
	defer a.wg.Done()

	stepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(rootCtx, cancel)
	defer stop()

	out := a.submit(stepCtx, prompt)
	if out.Discarded {
		return Outcome{}, fmt.Errorf("submission interrupted: %w", context.Cause(stepCtx))
	}
	return out, nil
}

// Close cancels any in-flight submission and waits for it to unwind. Later
// calls to CreateNote return Discarded outcomes. Safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.rootCancel()
	a.wg.Wait()
}

// begin registers a submission. It reports false once the app is closed.
func (a *App) begin() (context.Context, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, false
	}
	a.wg.Add(1)
	return a.rootCtx, true
}

// submit runs one request and describes it. A request that ended because ctx
// was cancelled is reported as Discarded rather than as a failure.
func (a *App) submit(ctx context.Context, prompt string) Outcome {
	start := time.Now()
	note, err := a.opts.Creator.CreateNote(ctx, prompt)
	if err != nil && ctx.Err() != nil {
		a.logger.Debug("submission abandoned", "err", err)
		return Outcome{Discarded: true}
	}

	out := Describe(note, err)
	fields := []any{"failed", out.Failed, "elapsed", time.Since(start).Round(time.Millisecond)}
	if note != nil {
		fields = append(fields, "bytes", len(note.Raw))
	}
	a.logger.Info("submission finished", fields...)
	return out
}
