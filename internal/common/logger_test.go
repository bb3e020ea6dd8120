package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, slog.LevelDebug, "json"))

	LogDebug("stage complete", Fields{"stage": "assign", "count": 3})
	assert.Contains(t, buf.String(), `"stage":"assign"`)
	assert.Contains(t, buf.String(), `"count":3`)

	buf.Reset()
	LogError(errors.New("boom"), "failed", Fields{"file": "budget.yaml"})
	assert.Contains(t, buf.String(), `"error":"boom"`)

	assert.Error(t, SetupLogger(&buf, slog.LevelInfo, "xml"))
}

func TestUserError(t *testing.T) {
	err := NewUserError("Unable to open budget file", ErrInvalidBudget)
	assert.Equal(t, "Unable to open budget file: invalid budget structure", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidBudget))

	bare := NewUserError("nothing to do", nil)
	assert.Equal(t, "nothing to do", bare.Error())
}
