package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/underbudget/internal/service"
)

// Ensure XLSXExporter implements the ReportExporter interface.
var _ service.ReportExporter = (*XLSXExporter)(nil)

// XLSXExporter writes every report table to its own sheet of a workbook.
type XLSXExporter struct {
	Path string
}

// NewXLSXExporter creates an exporter writing to path.
func NewXLSXExporter(path string) *XLSXExporter {
	return &XLSXExporter{Path: path}
}

// Export writes the workbook, replacing any existing file.
func (x *XLSXExporter) Export(ctx context.Context, rep *service.Report) error {
	if rep == nil {
		return fmt.Errorf("no report to export")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Debug("failed to close workbook", "error", err)
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]string
	}{
		{"Summary", rep.Summary},
		{"Comparison", rep.Comparison},
		{"Allocation", rep.Allocation},
		{"Worksheet", rep.Worksheet},
	}

	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}

		if err := writeSheet(f, sheet.name, sheet.rows, headerStyle, amountStyle); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet.name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(x.Path), 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(x.Path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Exported report", "path", x.Path, "title", rep.Title)
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string, headerStyle, amountStyle int) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}

		values := make([]any, len(row))
		for c, v := range row {
			values[c] = v
			if r > 0 {
				if d, err := decimal.NewFromString(v); err == nil {
					values[c] = d.InexactFloat64()
				}
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		if r == 0 {
			if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
				return err
			}
			continue
		}
		for c, v := range values {
			if _, ok := v.(float64); !ok {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, name, name, amountStyle); err != nil {
				return err
			}
		}
	}

	if len(rows) > 0 {
		last, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return err
		}
	}
	return nil
}
