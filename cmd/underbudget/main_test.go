package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/underbudget/internal/budget"
	"github.com/Veraticus/underbudget/internal/testutil/estimates"
)

const householdLedger = `date,payee,memo,amount
2024-01-02,ACME Payroll,January salary,3000.00
2024-01-03,Oak Street Apartments,rent,-900.00
2024-01-10,City Electric,,-110.00
2024-01-12,City Water,,-60.00
2024-01-14,Corner Market,weekly shop,-120.00
2024-01-20,Cinema,movie night,-45.00
`

// workspace holds the files a command test runs against.
type workspace struct {
	dir      string
	database string
	budget   string
	ledger   string
}

// newWorkspace isolates a test from the user's home, config and credentials.
func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}

	ws := workspace{
		dir:      dir,
		database: filepath.Join(dir, "data", "underbudget.db"),
		budget:   filepath.Join(dir, "household.yaml"),
		ledger:   filepath.Join(dir, "january.csv"),
	}

	b, _ := estimates.FixtureHousehold(t)
	require.NoError(t, budget.Save(ws.budget, b))
	require.NoError(t, os.WriteFile(ws.ledger, []byte(householdLedger), 0o600))
	return ws
}

// run executes the root command with the workspace database and returns everything it printed.
func (ws workspace) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--database", ws.database, "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "underbudget dev")
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "defaults", level: "info", format: "console"},
		{name: "json debug", level: "debug", format: "json"},
		{name: "bad level", level: "loud", format: "console", wantErr: true},
		{name: "bad format", level: "warn", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			viper.Set("logging.level", tt.level)
			viper.Set("logging.format", tt.format)

			err := setupLogging()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInitConfig_ReadsConfigFile(t *testing.T) {
	ws := newWorkspace(t)
	configPath := filepath.Join(ws.dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("budget:\n  path: "+ws.budget+"\n"), 0o600))

	out, err := ws.run(t, "", "--config", configPath,
		"analyze", "--transactions", ws.ledger, "--as-of", "2024-01-20", "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Household")
}
