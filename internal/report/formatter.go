package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/service"
)

// CLIFormatter renders report tables for terminal display.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{styles: NewStyles()}
}

// NewPlainFormatter creates a formatter that emits no terminal escapes.
func NewPlainFormatter() *CLIFormatter {
	return &CLIFormatter{styles: Plain()}
}

// Format renders the requested sections in order.
func (f *CLIFormatter) Format(rep *service.Report, sections []Section) string {
	if rep == nil {
		return f.styles.Error.Render("No report available")
	}

	parts := []string{f.styles.Title.Render(rep.Title + " - " + rep.Period)}
	for _, s := range sections {
		switch s {
		case SectionSummary:
			parts = append(parts, f.formatSummary(rep.Summary))
		case SectionComparison:
			parts = append(parts, f.formatTable("Comparison", rep.Comparison, 4))
		case SectionAllocation:
			parts = append(parts, f.formatTable("Allocation", rep.Allocation, -1))
		case SectionWorksheet:
			parts = append(parts, f.formatTable("Worksheet", rep.Worksheet, -1))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (f *CLIFormatter) formatSummary(rows [][]string) string {
	if len(rows) < 2 {
		return ""
	}

	width := 0
	for _, row := range rows[1:] {
		width = max(width, lipgloss.Width(row[0]))
	}

	lines := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		line := fmt.Sprintf("%-*s  %s", width, row[0], row[1])
		if strings.HasSuffix(row[0], "ending balance") {
			line = f.styles.Total.Render(line)
		}
		lines = append(lines, line)
	}
	return f.styles.Box.Render(f.styles.Subtitle.Render("Summary") + "\n" + strings.Join(lines, "\n"))
}

// formatTable lays rows out in aligned columns. Cells that parse as amounts
// are right-aligned. diffCol, when non-negative, is colored by ForDifference
// using column 1 as the polarity.
func (f *CLIFormatter) formatTable(title string, rows [][]string, diffCol int) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}

	header := f.formatRow(rows[0], widths)
	lines := []string{
		f.styles.Subtitle.Render(title),
		f.styles.Header.Render(header),
		f.styles.Subtle.Render(repeatChar("─", lipgloss.Width(header))),
	}

	if len(rows) == 1 {
		lines = append(lines, f.styles.Subtle.Render("(none)"))
		return strings.Join(lines, "\n")
	}

	for _, row := range rows[1:] {
		cells := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = f.pad(cell, widths[i])
			if i == diffCol {
				if d, err := decimal.NewFromString(cell); err == nil {
					cells[i] = f.styles.ForDifference(row[1], d).Render(cells[i])
				}
			}
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatRow(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i := range widths {
		if i < len(row) {
			cells[i] = fmt.Sprintf("%-*s", widths[i], row[i])
		}
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

func (f *CLIFormatter) pad(cell string, width int) string {
	if isAmount(cell) {
		return fmt.Sprintf("%*s", width, cell)
	}
	return fmt.Sprintf("%-*s", width, cell)
}

func isAmount(s string) bool {
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}
