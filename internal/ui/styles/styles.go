// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"} // Cell text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Headers, status
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Row numbers, help

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Grid colors
	CursorBgColor    = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}
	SelectionBgColor = lipgloss.AdaptiveColor{Light: "#D6EAF8", Dark: "#1A5276"}
	CopiedBgColor    = lipgloss.AdaptiveColor{Light: "#FCF3CF", Dark: "#5C4B00"}

	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Bold(true)

	RowNumberStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	CellStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor)

	CursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(CursorBgColor).
			Bold(true)

	SelectionStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Background(SelectionBgColor)

	CopiedStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Background(CopiedBgColor).
			Underline(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(StatusErrorColor).
				Bold(true)

	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(StatusSuccessColor)

	LockedBadgeStyle = lipgloss.NewStyle().
				Foreground(StatusWarningColor).
				Bold(true)
)
