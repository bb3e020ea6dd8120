// Package importer reads ledger transactions from exported bank and
// bookkeeping files.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/model"
	"github.com/Veraticus/underbudget/internal/ofx"
)

// Parser converts one file format into transactions.
type Parser interface {
	ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error)
}

// Options controls which parsed transactions are kept.
type Options struct {
	Period model.Period // rows outside the period are dropped when set
}

// ForFile picks a parser from the file extension.
func ForFile(path string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".ofx", ".qfx":
		return ofx.NewParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
}

// ImportFile parses a ledger file and returns the transactions within the
// configured period, each tagged with its source and a deduplication hash.
func ImportFile(ctx context.Context, path string, opts Options) ([]model.Transaction, error) {
	parser, err := ForFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied ledger path
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close ledger file", "path", path, "error", cerr)
		}
	}()

	parsed, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	tagRows(parsed, filepath.Base(path))
	kept := Filter(parsed, opts.Period)

	slog.Info("Imported ledger file",
		"path", path,
		"parsed", len(parsed),
		"kept", len(kept))
	return kept, nil
}

// tagRows sets the source and deduplication hash of each row. Identical rows in
// one file are separate purchases, so each repeat gets its own hash while a
// re-import of the same file still yields the same hashes.
func tagRows(txns []model.Transaction, source string) {
	seen := make(map[string]int, len(txns))
	for i := range txns {
		txns[i].Source = source
		base := txns[i].Hash
		if base == "" {
			base = txns[i].GenerateHash()
		}
		txns[i].Hash = model.RepeatHash(base, seen[base])
		seen[base]++
	}
}

// Filter returns the transactions dated within period. A nil period keeps everything.
func Filter(txns []model.Transaction, period model.Period) []model.Transaction {
	if period == nil {
		return txns
	}
	kept := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if model.Contains(period, txn.Date) {
			kept = append(kept, txn)
		}
	}
	return kept
}
