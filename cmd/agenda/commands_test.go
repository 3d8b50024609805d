package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func icsConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ics := filepath.Join(dir, "agenda.ics")
	require.NoError(t, os.WriteFile(ics, []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"), 0o600))
	cfgPath := filepath.Join(dir, "application.yaml")
	cfg := "upstream:\n  kind: ics\n  icspath: " + ics + "\ngrid:\n  timezone: UTC\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	err := execute(t, "list", "-o", "xml")

	assert.ErrorContains(t, err, "unknown output")
}

func TestWeekCommand_RejectsBadDate(t *testing.T) {
	err := execute(t, "week", "15/03/2024", "--config", icsConfig(t))

	assert.Error(t, err)
}

func TestWeekCommand_TooManyArgs(t *testing.T) {
	err := execute(t, "week", "2024-03-15", "2024-03-16")

	assert.Error(t, err)
}

func TestListCommand_UnknownTimezone(t *testing.T) {
	err := execute(t, "list", "--config", icsConfig(t), "--timezone", "Atlantis/Central")

	assert.ErrorContains(t, err, "unknown timezone")
}

func TestListCommand_EmptyCalendar(t *testing.T) {
	err := execute(t, "list", "--config", icsConfig(t), "--no-color")

	assert.NoError(t, err)
}
