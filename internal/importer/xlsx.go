package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

// XLSXParser reads the first worksheet of an Excel workbook using the same
// header rules as CSVParser.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// ParseFile parses every row after the header row of the first sheet.
func (p *XLSXParser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	xl, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", common.ErrInvalidRecord, err)
	}
	defer func() {
		if cerr := xl.Close(); cerr != nil {
			slog.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := xl.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", common.ErrInvalidRecord, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	mapping, err := newColumnMapping(rows[0])
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		// GetRows trims trailing empty cells.
		for len(row) < len(mapping) {
			row = append(row, "")
		}

		txn, err := mapping.transaction(row, i+2)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}
