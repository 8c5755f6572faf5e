package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/workday-calendar/internal/calendar"
)

const seedJSON = `{
  "types": [{"short_name": "navidad", "name": "Navidad"}],
  "holidays": [
    {"date": "2005-10-01", "holiday_type": "navidad"},
    {"date": "2006-01-01", "holiday_type": "año_nuevo"},
    {"date": "2006-01-09", "holiday_type": "mártires"},
    {"date": "2006-12-25", "holiday_type": "navidad"},
    {"date": "2007-10-01", "holiday_type": "navidad"}
  ]
}`

func writeTestFiles(t *testing.T, storageType string) string {
	t.Helper()
	dir := t.TempDir()

	seedFile := filepath.Join(dir, "holidays.json")
	require.NoError(t, os.WriteFile(seedFile, []byte(seedJSON), 0o644))

	configFile := filepath.Join(dir, "config.yaml")
	content := "storage:\n" +
		"  type: " + storageType + "\n" +
		"  dsn: " + filepath.Join(dir, "calendar.db") + "\n" +
		"  seed_file: " + seedFile + "\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	return configFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestCLI_FileStorage(t *testing.T) {
	configFile := writeTestFiles(t, "file")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"days", []string{"days", "--from", "2006-01-01", "--to", "2006-01-10"}, "6"},
		{"weekend", []string{"weekend", "--from", "2006-01-01", "--to", "2006-01-10"}, "2"},
		{"delta", []string{"delta", "--from", "2006-01-01", "--days", "5"}, "2006-01-06"},
		{"month", []string{"month", "--year", "2006", "--month", "1"}, "21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, append([]string{"--config", configFile}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCLI_InvalidInput(t *testing.T) {
	configFile := writeTestFiles(t, "file")

	_, err := run(t, "--config", configFile, "days", "--from", "01/01/2006", "--to", "2006-01-10")
	assert.ErrorContains(t, err, "invalid date format")

	_, err = run(t, "--config", configFile, "days", "--from", "2006-01-10", "--to", "2006-01-01")
	assert.Error(t, err)
}

func TestCLI_SeedAndQuery(t *testing.T) {
	configFile := writeTestFiles(t, "sqlite")

	out, err := run(t, "--config", configFile, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "5 created")

	out, err = run(t, "--config", configFile, "holidays", "--year", "2006")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Navidad")
	assert.Equal(t, "3 holidays, store covers 2005-10-01 to 2007-10-01", lines[3])

	out, err = run(t, "--config", configFile, "holidays", "--types")
	require.NoError(t, err)
	lines = strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "año_nuevo"))
	assert.Contains(t, lines[2], "Navidad")

	out, err = run(t, "--config", configFile, "days", "--from", "2006-01-01", "--to", "2006-01-10")
	require.NoError(t, err)
	assert.Equal(t, "6", out)
}

func TestCLI_HolidaysFromFile(t *testing.T) {
	configFile := writeTestFiles(t, "file")

	out, err := run(t, "--config", configFile, "holidays", "--year", "2006")
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "\n"), 3)

	out, err = run(t, "--config", configFile, "holidays", "--types")
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "\n"), 3)
}

func TestCLI_HolidaysEmptyStoreUsesFallback(t *testing.T) {
	configFile := writeTestFiles(t, "sqlite")

	out, err := run(t, "--config", configFile, "holidays")
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "\n"), 5)
}

func TestCLI_WeekendWithoutHolidayStore(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := "storage:\n  type: file\n  seed_file: " + filepath.Join(dir, "missing.json") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	out, err := run(t, "--config", configFile, "weekend", "--from", "2006-01-01", "--to", "2006-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	_, err = run(t, "--config", configFile, "days", "--from", "2006-01-01", "--to", "2006-01-10")
	assert.Error(t, err)
}

func TestCLI_FiscalYear(t *testing.T) {
	configFile := writeTestFiles(t, "file")

	out, err := run(t, "--config", configFile, "fiscal-year", "--year", "2006")
	require.NoError(t, err)
	assert.Contains(t, out, "FY06 (2005-10-01 to 2006-09-30)")
	assert.Contains(t, out, "Remaining:     0 (0.0%)")

	_, err = run(t, "--config", configFile, "fiscal-year", "--year", "2027")
	require.ErrorIs(t, err, calendar.ErrOutOfBounds)
	assert.Contains(t, explainError(err).Error(), "seed --file")
}

func TestCLI_DeltaRejectsHugeOffset(t *testing.T) {
	configFile := writeTestFiles(t, "file")

	_, err := run(t, "--config", configFile, "delta", "--from", "2006-01-01", "--days", "9223372036854775807")
	assert.ErrorIs(t, err, calendar.ErrInvalidRange)
}

func TestExplainError(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, explainError(plain))

	wrapped := explainError(fmt.Errorf("query: %w", calendar.ErrEmptyRegistry))
	assert.ErrorIs(t, wrapped, calendar.ErrEmptyRegistry)
	assert.Contains(t, wrapped.Error(), "seed --file")
}
