package ui

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"
)

// isDarkBg caches the terminal background detection result at package init.
var isDarkBg = lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

// AdaptiveColor picks between a light-mode and dark-mode hex color based on
// the detected terminal background.
func AdaptiveColor(light, dark string) color.Color {
	if isDarkBg {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

var currentTheme = DefaultTheme()

// GetTheme returns the active theme.
func GetTheme() Theme {
	return currentTheme
}

// Theme holds the semantic colors used by the form and the one-shot output.
type Theme struct {
	Primary     color.Color
	OnPrimary   color.Color
	Success     color.Color
	Error       color.Color
	Text        color.Color
	Muted       color.Color
	VeryMuted   color.Color
	Border      color.Color
	MutedBorder color.Color
}

// DefaultTheme is built on the Catppuccin Latte (light) and Mocha (dark)
// palettes. Primary is the blue of the submit button.
func DefaultTheme() Theme {
	return Theme{
		Primary:     AdaptiveColor("#1e66f5", "#89b4fa"), // Blue
		OnPrimary:   AdaptiveColor("#eff1f5", "#1e1e2e"), // Base
		Success:     AdaptiveColor("#40a02b", "#a6e3a1"), // Green
		Error:       AdaptiveColor("#d20f39", "#f38ba8"), // Red
		Text:        AdaptiveColor("#4c4f69", "#cdd6f4"), // Text
		Muted:       AdaptiveColor("#6c6f85", "#a6adc8"), // Subtext 0
		VeryMuted:   AdaptiveColor("#9ca0b0", "#6c7086"), // Overlay 0
		Border:      AdaptiveColor("#acb0be", "#585b70"), // Surface 2
		MutedBorder: AdaptiveColor("#ccd0da", "#313244"), // Surface 0
	}
}

// StyleCard is the rounded container the form is drawn in.
func StyleCard(width int, theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2)
}

// StyleHeader styles the form heading.
func StyleHeader(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true)
}

// StyleMuted styles help and secondary text.
func StyleMuted(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true)
}

// StyleError styles failure lines in one-shot output.
func StyleError(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)
}

// StyleSuccess styles success lines in one-shot output.
func StyleSuccess(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true)
}
