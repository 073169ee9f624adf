package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

// Color palette: a single lime accent with status colors
const (
	ColorLime     = "154" // Primary accent, ok
	ColorLimeDim  = "106" // Category headers
	ColorWhite    = "255" // Names
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Borders, details
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds all UI styles.
type Styles struct {
	Header       lipgloss.Style
	Category     lipgloss.Style
	Name         lipgloss.Style
	OK           lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	NotInstalled lipgloss.Style
	Dim          lipgloss.Style
	Label        lipgloss.Style
	Active       lipgloss.Style
	Border       lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Category:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLimeDim)),
		Name:         lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		OK:           lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		NotInstalled: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Active:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Border:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:       plain,
		Category:     plain,
		Name:         plain,
		OK:           plain,
		Warning:      plain,
		Error:        plain,
		NotInstalled: plain,
		Dim:          plain,
		Label:        plain,
		Active:       plain,
		Border:       plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// StatusIcon returns the marker shown next to a result.
func StatusIcon(s detect.Status) string {
	switch s {
	case detect.StatusOK:
		return "✓"
	case detect.StatusWarning:
		return "⚠"
	case detect.StatusError:
		return "✗"
	case detect.StatusNotInstalled:
		return "○"
	default:
		return "?"
	}
}

// Status returns the style for a result status.
func (s Styles) Status(status detect.Status) lipgloss.Style {
	switch status {
	case detect.StatusOK:
		return s.OK
	case detect.StatusWarning:
		return s.Warning
	case detect.StatusError:
		return s.Error
	default:
		return s.NotInstalled
	}
}
