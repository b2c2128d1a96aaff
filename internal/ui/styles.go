package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/portsync/internal/model"
)

// Color palette
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple

	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	ColorTextMuted  = lipgloss.Color("#9CA3AF") // Gray
	ColorTextBright = lipgloss.Color("#FFFFFF") // White
	ColorBorder     = lipgloss.Color("#374151") // Medium gray
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	BoldStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTextBright)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Message styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)
)

// Table styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorTextBright).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)
)

// DispositionStyle colors a board disposition
func DispositionStyle(d model.Disposition) lipgloss.Style {
	switch d {
	case model.DispositionNeedsPorting:
		return WarningStyle
	case model.DispositionPorted:
		return SuccessStyle
	default:
		return DimStyle
	}
}
