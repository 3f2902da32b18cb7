// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Adaptive pairs keep output legible on both light and dark
// terminals.
var (
	accentColor  = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"} // Blue
	successColor = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"} // Green
	warningColor = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"} // Amber
	errorColor   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"} // Red
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"} // Gray
)

var (
	// TitleStyle renders command headlines.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	// BoldStyle emphasizes inline text such as summary labels.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// MutedStyle de-emphasizes secondary detail lines.
	MutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	infoStyle    = lipgloss.NewStyle().Foreground(accentColor)
)

// Icons.
const (
	SuccessIcon = "✔"
	ErrorIcon   = "✘"
	WarningIcon = "▲"
	InfoIcon    = "•"
	LensIcon    = "🔍"
	CacheIcon   = "💾"
)

// FormatTitle renders a command headline.
func FormatTitle(title string) string {
	return TitleStyle.Render(LensIcon + " " + title)
}

// FormatSuccess renders a completed-step message.
func FormatSuccess(message string) string {
	return successStyle.Render(SuccessIcon + " " + message)
}

// FormatWarning renders a caution message.
func FormatWarning(message string) string {
	return warningStyle.Render(WarningIcon + " " + message)
}

// FormatError renders a failure message.
func FormatError(message string) string {
	return errorStyle.Render(ErrorIcon + " " + message)
}

// FormatInfo renders a progress or status note.
func FormatInfo(message string) string {
	return infoStyle.Render(InfoIcon + " " + message)
}
