package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCmd(t *testing.T) {
	tests := []struct {
		outputCheck   func(t *testing.T, output string)
		name          string
		errorContains string
		args          []string
		wantErr       bool
	}{
		{
			name: "summary from a ledger file",
			args: []string{"--transactions", "LEDGER", "--as-of", "2024-01-20"},
			outputCheck: func(t *testing.T, output string) {
				t.Helper()
				assert.Contains(t, output, "Household")
				assert.Contains(t, output, "January 2024")
				assert.Contains(t, output, "2765.00")
				assert.Contains(t, output, "2485.00")
			},
		},
		{
			name: "every section",
			args: []string{"--transactions", "LEDGER", "--as-of", "2024-01-20", "--reports", "all", "--long"},
			outputCheck: func(t *testing.T, output string) {
				t.Helper()
				assert.Contains(t, output, "Unbudgeted Expense")
				assert.Contains(t, output, "Cinema")
				assert.Contains(t, output, "actual exceeds estimated")
			},
		},
		{
			name:          "missing budget",
			args:          []string{"--budget", "", "--transactions", "LEDGER"},
			wantErr:       true,
			errorContains: "no budget given",
		},
		{
			name:          "unknown report section",
			args:          []string{"--transactions", "LEDGER", "--reports", "sumary"},
			wantErr:       true,
			errorContains: "did you mean",
		},
		{
			name:          "invalid as-of date",
			args:          []string{"--transactions", "LEDGER", "--as-of", "01/20/2024"},
			wantErr:       true,
			errorContains: "invalid as-of date format",
		},
		{
			name:          "unsupported ledger format",
			args:          []string{"--transactions", "ledger.pdf"},
			wantErr:       true,
			errorContains: "unsupported file format",
		},
		{
			name:          "sheets without credentials",
			args:          []string{"--transactions", "LEDGER", "--sheets"},
			wantErr:       true,
			errorContains: "Google Sheets is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)

			args := []string{"analyze", "--budget", ws.budget, "--no-progress"}
			for _, arg := range tt.args {
				args = append(args, strings.ReplaceAll(arg, "LEDGER", ws.ledger))
			}

			output, err := ws.run(t, "", args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			if tt.outputCheck != nil {
				tt.outputCheck(t, output)
			}
		})
	}
}

func TestAnalyzeCmd_ExportWorkbook(t *testing.T) {
	ws := newWorkspace(t)
	workbook := filepath.Join(ws.dir, "reports", "january.xlsx")

	output, err := ws.run(t, "", "analyze", "--budget", ws.budget, "--transactions", ws.ledger,
		"--as-of", "2024-01-20", "--export", workbook, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, output, "Report written to "+workbook)

	info, err := os.Stat(workbook)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAnalyzeCmd_FromDatabaseAndHistory(t *testing.T) {
	ws := newWorkspace(t)

	_, err := ws.run(t, "", "import", ws.ledger)
	require.NoError(t, err)

	output, err := ws.run(t, "", "analyze", "--budget", ws.budget, "--as-of", "2024-01-20", "--save", "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, output, "2765.00")
	require.Contains(t, output, "Analysis saved as ")

	runID := strings.Fields(output[strings.Index(output, "Analysis saved as ")+len("Analysis saved as "):])[0]

	output, err = ws.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, output, runID)
	assert.Contains(t, output, "Household")
	assert.Contains(t, output, "2485.00")

	output, err = ws.run(t, "", "history", runID)
	require.NoError(t, err)
	assert.Contains(t, output, "Household - January 2024")
	assert.Contains(t, output, "Utilities")
	assert.Contains(t, output, "Unbudgeted Expense")

	_, err = ws.run(t, "", "history", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run ID")
}

func TestHistoryCmd_Empty(t *testing.T) {
	ws := newWorkspace(t)

	output, err := ws.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, output, "No saved analyses")
}
