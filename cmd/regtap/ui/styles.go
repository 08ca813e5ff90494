// Package ui renders registry search results as an interactive
// terminal browser: a navigable resource table with a per-record
// detail view.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the visual styling for the browser views.
type Styles struct {
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Standard lipgloss.Style
	Detail   lipgloss.Style
}

// DefaultStyles returns the browser styling, adapting to light and
// dark terminal backgrounds.
func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	muted := lipgloss.AdaptiveColor{Light: "245", Dark: "241"}

	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "231"}).
			Background(accent).
			Padding(0, 1).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(muted).
			Width(13),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Standard: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}).
			Bold(true),

		Detail: lipgloss.NewStyle().
			Padding(0, 2),
	}
}
