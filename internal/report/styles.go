package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/cli"
)

// Styles contains all styling definitions for report formatting.
type Styles struct {
	// Base styles from CLI package
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	// Report-specific styles
	Box    lipgloss.Style
	Header lipgloss.Style
	Total  lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1)

	s.Header = cli.SubtleStyle.Bold(true)

	s.Total = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor)

	return s
}

// Plain returns styles that render text unchanged, for writing to files and tests.
func Plain() *Styles {
	n := lipgloss.NewStyle()
	return &Styles{
		Title: n, Subtitle: n, Success: n, Warning: n, Error: n,
		Subtle: n, Normal: n, Box: n, Header: n, Total: n,
	}
}

// ForDifference colors an actual-minus-estimated amount.
// Overspending an expense or falling short on income is a warning.
func (s *Styles) ForDifference(polarity string, diff decimal.Decimal) lipgloss.Style {
	switch {
	case diff.IsZero():
		return s.Normal
	case polarity == "income" && diff.IsNegative(), polarity != "income" && diff.IsPositive():
		return s.Warning
	default:
		return s.Success
	}
}

// repeatChar repeats a character n times.
func repeatChar(char string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(char, n)
}
