package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCmd(t *testing.T) {
	ws := newWorkspace(t)

	output, err := ws.run(t, "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, output, "Current version")
	assert.Contains(t, output, "pending v1")
	assert.Contains(t, output, "pending v2")

	output, err = ws.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, output, "Database migrated to version 2")

	output, err = ws.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, output, "Database is up to date (version 2)")

	output, err = ws.run(t, "", "migrate", "--status")
	require.NoError(t, err)
	assert.NotContains(t, output, "pending")
}
