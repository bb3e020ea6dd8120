package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer    io.Writer
		name      string
		operation string
		want      string
	}{
		{
			name:      "with custom writer",
			writer:    &bytes.Buffer{},
			operation: "Import",
			want:      "Import",
		},
		{
			name:   "with nil writer and no operation",
			writer: nil,
			want:   "Operation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer, tt.operation)
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.Equal(t, tt.want, handler.operation)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestHandleInterrupts(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output, "Analysis")

	ctx, stop := handler.HandleInterrupts(context.Background(), "Nothing was saved.")
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("Context should not be canceled initially")
	default:
	}

	handler.interrupt()
	handler.interrupt()

	<-ctx.Done()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, handler.WasInterrupted())

	out := output.String()
	assert.Equal(t, 1, strings.Count(out, "Analysis interrupted!"), "message should only be shown once")
	assert.Contains(t, out, "Nothing was saved.")
	assert.Contains(t, out, "See you later!")
}

func TestHandleInterrupts_StopWithoutSignal(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output, "Import")

	ctx, stop := handler.HandleInterrupts(context.Background(), "")
	stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}
