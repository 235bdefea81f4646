package ui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// AppModelOptions holds configuration passed to NewAppModel.
type AppModelOptions struct {
	// Width is the initial terminal width in columns.
	Width int

	// Height is the initial terminal height in rows.
	Height int
}

// AppModel is the root Bubble Tea model. It mounts exactly one PromptForm and
// centers it in the full terminal viewport:
//
//	┌──────────────────────────────────────────────┐
//	│                                              │
//	│          ╭─ 🧠 Notion Note Agent ─╮          │
//	│          │ [ textarea ]           │          │
//	│          │ [ Create Note ]        │          │
//	│          │ [ result ]             │          │
//	│          ╰────────────────────────╯          │
//	│                                              │
//	└──────────────────────────────────────────────┘
//
// It has no behavior of its own beyond sizing and quitting; everything else
// is routed to the form.
type AppModel struct {
	form   *PromptForm
	quit   key.Binding
	width  int
	height int
}

// NewAppModel creates the root model around a fresh form bound to submitter.
func NewAppModel(submitter Submitter, opts AppModelOptions) *AppModel {
	return &AppModel{
		form:   NewPromptForm(submitter, opts.Width),
		quit:   defaultFormKeys().Quit,
		width:  opts.Width,
		height: opts.Height,
	}
}

// Form returns the mounted form.
func (m *AppModel) Form() *PromptForm {
	return m.form
}

// Init implements tea.Model.
func (m *AppModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model. Quitting tears the form down first so a result
// still in flight is dropped instead of applied.
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyPressMsg:
		if key.Matches(msg, m.quit) {
			m.form.Close()
			return m, tea.Quit
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *AppModel) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render places the form in the middle of the viewport.
func (m *AppModel) Render() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.form.Render())
}
