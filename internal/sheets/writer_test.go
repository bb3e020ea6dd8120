package sheets

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Veraticus/underbudget/internal/service"
)

func testReport() *service.Report {
	return &service.Report{
		Title:  "Household",
		Period: "January 2024",
		Summary: [][]string{
			{"Item", "Amount"},
			{"Expected ending balance", "2485.00"},
		},
		Comparison: [][]string{
			{"Estimate", "Type", "Estimated", "Actual", "Difference"},
			{"Rent", "expense", "900.00", "900.00", "0.00"},
		},
		Allocation: [][]string{
			{"Date", "Payee", "Memo", "Amount", "Estimate", "Rule"},
			{"2024-01-03", "Oak Street Apartments", "rent", "-900.00", "Rent", `payee begins-with "Oak Street"`},
			{"2024-01-20", "Cinema", "movie night", "-45.00", "Unbudgeted Expense", "any expense"},
		},
		Worksheet: [][]string{
			{"Estimate", "Type", "Estimated", "Actual", "Expected"},
			{"Rent", "expense", "900.00", "900.00", "900.00"},
		},
	}
}

func testConfig() Config {
	config := DefaultConfig()
	config.ServiceAccountPath = "/path/to/key.json"
	config.RetryAttempts = 2
	config.RetryDelay = time.Millisecond
	return config
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWriter_ExportCreatesSpreadsheet(t *testing.T) {
	api := NewMockAPI(nil)
	config := testConfig()
	config.SpreadsheetName = ""
	w := newWriter(api, config, testLogger())

	require.NoError(t, w.Export(context.Background(), testReport()))

	require.Len(t, api.Created, 1)
	assert.Equal(t, "Household", api.CreatedTitle)
	assert.Equal(t, api.Created[0], w.SpreadsheetID())

	assert.Equal(t, []string{"Summary!A:Z", "Comparison!A:Z", "Allocation!A:Z", "Worksheet!A:Z"}, api.Cleared)
	allocation := api.Values["Allocation!A1"]
	require.Len(t, allocation, 3)
	assert.Equal(t, "Cinema", allocation[2][1])

	// bold header, frozen row, resized columns per tab
	assert.Len(t, api.Requests, 12)
}

func TestWriter_ExportExistingSpreadsheetAddsMissingTabs(t *testing.T) {
	api := NewMockAPI(map[string][]string{"existing": {"Summary", "Notes"}})
	config := testConfig()
	config.SpreadsheetID = "existing"
	config.EnableFormatting = false
	w := newWriter(api, config, testLogger())

	require.NoError(t, w.Export(context.Background(), testReport()))

	assert.Empty(t, api.Created)
	tabs, err := api.Tabs(context.Background(), "existing")
	require.NoError(t, err)
	for _, title := range []string{"Summary", "Comparison", "Allocation", "Worksheet", "Notes"} {
		assert.Contains(t, tabs, title)
	}
	assert.Empty(t, api.Requests)
}

func TestWriter_ExportBatches(t *testing.T) {
	api := NewMockAPI(nil)
	config := testConfig()
	config.BatchSize = 2
	w := newWriter(api, config, testLogger())

	require.NoError(t, w.Export(context.Background(), testReport()))

	assert.Len(t, api.Values["Allocation!A1"], 2)
	assert.Len(t, api.Values["Allocation!A3"], 1)
}

func TestWriter_ExportRetries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantError bool
	}{
		{name: "transient failure recovers", failures: 1, wantError: false},
		{name: "persistent failure", failures: 5, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewMockAPI(nil)
			calls := 0
			api.UpdateFunc = func(_, _ string, _ [][]any) error {
				calls++
				if calls <= tt.failures {
					return errors.New("backend error")
				}
				return nil
			}
			w := newWriter(api, testConfig(), testLogger())

			err := w.Export(context.Background(), testReport())
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "failed to write Summary")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWriter_ExportNilReport(t *testing.T) {
	w := newWriter(NewMockAPI(nil), testConfig(), nil)
	assert.Error(t, w.Export(context.Background(), nil))
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, testLogger())
	assert.ErrorContains(t, err, "invalid config")
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "sheets.json")
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	require.NoError(t, saveToken(path, token))
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
