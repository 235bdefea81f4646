package ui

import (
	"fmt"
	"image/color"
	"io"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
)

var (
	pointsFrames = []string{"∙∙∙", "●∙∙", "∙●∙", "∙∙●"}
	pointsFPS    = time.Second / 7
)

// Spinner is the in-flight indicator of the one-shot mode. It animates on
// its own goroutine, writing to w (normally stderr) so stdout only ever
// carries the result line.
type Spinner struct {
	w       io.Writer
	message string
	frames  []string
	fps     time.Duration
	color   color.Color

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewSpinner creates a spinner that writes message to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  pointsFrames,
		fps:     pointsFPS,
		color:   GetTheme().Primary,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Stop must be called exactly once afterwards.
func (s *Spinner) Start() {
	go s.run()
}

// Stop halts the animation and blocks until the line has been cleared.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

func (s *Spinner) run() {
	defer close(s.stopped)

	theme := GetTheme()
	frameStyle := lipgloss.NewStyle().Foreground(s.color).Bold(true)
	messageStyle := lipgloss.NewStyle().Foreground(theme.Text).Italic(true)

	ticker := time.NewTicker(s.fps)
	defer ticker.Stop()

	var frame int
	for {
		select {
		case <-s.done:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r %s %s",
				frameStyle.Render(s.frames[frame%len(s.frames)]),
				messageStyle.Render(s.message))
			frame++
		}
	}
}

// ShowSpinner runs action while a spinner labelled like the busy trigger is
// shown on w.
func ShowSpinner(w io.Writer, action func() error) error {
	sp := NewSpinner(w, submittingLabel)
	sp.Start()
	defer sp.Stop()
	return action()
}
