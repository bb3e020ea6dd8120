package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/service"
)

// Ensure Writer implements the ReportExporter interface.
var _ service.ReportExporter = (*Writer)(nil)

// Writer exports reports to a Google spreadsheet, one tab per report table.
type Writer struct {
	api    spreadsheetAPI
	logger *slog.Logger
	config Config
}

type tab struct {
	title string
	rows  [][]string
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create the Sheets service
	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(&serviceAPI{service: srv}, config, logger), nil
}

func newWriter(api spreadsheetAPI, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		api:    api,
		config: config,
		logger: logger,
	}
}

// Export writes every report table to its own tab, replacing earlier contents.
func (w *Writer) Export(ctx context.Context, rep *service.Report) error {
	if rep == nil {
		return fmt.Errorf("no report to export")
	}

	tabs := []tab{
		{"Summary", rep.Summary},
		{"Comparison", rep.Comparison},
		{"Allocation", rep.Allocation},
		{"Worksheet", rep.Worksheet},
	}

	w.logger.Info("starting report export",
		"title", rep.Title,
		"period", rep.Period,
		"allocations", max(len(rep.Allocation)-1, 0))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	// Get or create spreadsheet
	var spreadsheetID string
	var ids map[string]int64
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, ids, err = w.prepareSpreadsheet(ctx, rep.Title, tabs)
		return err
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	rowsWritten := 0
	for _, t := range tabs {
		values := toValues(t.rows)
		err := common.WithRetry(ctx, func() error {
			if err := w.api.Clear(ctx, spreadsheetID, t.title+"!A:Z"); err != nil {
				return fmt.Errorf("failed to clear %s: %w", t.title, err)
			}
			return w.writeData(ctx, spreadsheetID, t.title, values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", t.title, err)
		}
		rowsWritten += len(values)
	}

	// Apply formatting if enabled
	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.api.BatchUpdate(ctx, spreadsheetID, formattingRequests(tabs, ids))
		}, retryOpts)
		if err != nil {
			// Don't fail the whole operation if formatting fails
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", rowsWritten)

	return nil
}

// prepareSpreadsheet returns the target spreadsheet with every tab present.
func (w *Writer) prepareSpreadsheet(ctx context.Context, title string, tabs []tab) (string, map[string]int64, error) {
	titles := make([]string, 0, len(tabs))
	for _, t := range tabs {
		titles = append(titles, t.title)
	}

	spreadsheetID := w.config.SpreadsheetID
	if spreadsheetID == "" {
		name := w.config.SpreadsheetName
		if name == "" {
			name = title
		}
		if name == "" {
			name = DefaultSpreadsheetName
		}

		id, err := w.api.Create(ctx, name, w.config.TimeZone, titles)
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet", "id", id, "name", name)
		spreadsheetID = id
		w.config.SpreadsheetID = id
	}

	ids, err := w.api.Tabs(ctx, spreadsheetID)
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}

	var missing []string
	for _, t := range titles {
		if _, ok := ids[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		if err := w.api.AddTabs(ctx, spreadsheetID, missing); err != nil {
			return "", nil, fmt.Errorf("unable to add tabs %v: %w", missing, err)
		}
		if ids, err = w.api.Tabs(ctx, spreadsheetID); err != nil {
			return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
		}
	}

	return spreadsheetID, ids, nil
}

// SpreadsheetID returns the spreadsheet written by the last export.
func (w *Writer) SpreadsheetID() string {
	return w.config.SpreadsheetID
}

// writeData writes the data to one tab.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, title string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", title, i+1)
		if err := w.api.Update(ctx, spreadsheetID, rangeStr, batch); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", title, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func toValues(rows [][]string) [][]any {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		r := make([]any, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		values = append(values, r)
	}
	return values
}

// formattingRequests bolds and freezes each tab's header row and resizes its columns.
func formattingRequests(tabs []tab, ids map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, t := range tabs {
		id, ok := ids[t.title]
		if !ok || len(t.rows) == 0 {
			continue
		}
		columns := int64(len(t.rows[0]))

		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   columns,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: id,
						GridProperties: &sheets.GridProperties{
							FrozenRowCount: 1,
						},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    id,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   columns,
					},
				},
			},
		)
	}
	return requests
}
