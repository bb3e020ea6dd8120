package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
)

// CSVParser reads comma-separated ledger exports whose first line names the columns.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// ParseFile parses every record after the header line.
func (p *CSVParser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", common.ErrInvalidRecord, err)
	}

	mapping, err := newColumnMapping(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", common.ErrInvalidRecord, line, err)
		}
		if isBlank(row) {
			continue
		}

		txn, err := mapping.transaction(row, line)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
