package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleCSV = "name,age\nana,31\nbob,\neve,27\n"

type sheetJSON struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func writeCSV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(p, []byte(peopleCSV), 0644))
	return p
}

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	all := append([]string{"vgrid", "--no-log", "--data-dir", dataDir}, args...)
	err := Run(context.Background(), all, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func TestExec(t *testing.T) {
	csvPath := writeCSV(t)

	tests := map[string]struct {
		args     []string
		expSheet sheetJSON
		expErr   bool
	}{
		"Opening a CSV should print it": {
			args: []string{"exec", csvPath, "--format", "json"},
			expSheet: sheetJSON{
				Name:    "people",
				Columns: []string{"name", "age"},
				Rows:    [][]any{{"ana", "31"}, {"bob", nil}, {"eve", "27"}},
			},
		},
		"Filling the nulls of a column should use the previous value": {
			args: []string{"exec", csvPath, "--format", "json", "-s", "go-right", "-s", "fill-nulls"},
			expSheet: sheetJSON{
				Name:    "people",
				Columns: []string{"name", "age"},
				Rows:    [][]any{{"ana", "31"}, {"bob", "31"}, {"eve", "27"}},
			},
		},
		"Adding rows and undoing should leave the sheet as it was": {
			args: []string{"exec", csvPath, "--format", "json", "-s", "add-rows 5", "-s", "undo-last"},
			expSheet: sheetJSON{
				Name:    "people",
				Columns: []string{"name", "age"},
				Rows:    [][]any{{"ana", "31"}, {"bob", nil}, {"eve", "27"}},
			},
		},
		"An unknown command should fail": {
			args:   []string{"exec", csvPath, "-s", "fil-nulls"},
			expErr: true,
		},
		"A missing file should fail": {
			args:   []string{"exec", filepath.Join(t.TempDir(), "missing.csv")},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			out, err := runCLI(t, t.TempDir(), test.args...)

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			var got sheetJSON
			require.NoError(json.Unmarshal([]byte(out), &got))
			assert.Equal(test.expSheet, got)
		})
	}
}

func TestExecScript(t *testing.T) {
	csvPath := writeCSV(t)
	script := filepath.Join(t.TempDir(), "steps")
	require.NoError(t, os.WriteFile(script, []byte("# delete the first row\n\ndelete-row\n"), 0644))

	out, err := runCLI(t, t.TempDir(), "exec", csvPath, "--script", script, "--format", "json")
	require.NoError(t, err)

	var got sheetJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, [][]any{{"bob", nil}, {"eve", "27"}}, got.Rows)
}

func TestSheetStoreLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	csvPath := writeCSV(t)
	dataDir := t.TempDir()

	_, err := runCLI(t, dataDir, "exec", csvPath, "-s", "save-sheet")
	require.NoError(err)

	out, err := runCLI(t, dataDir, "sheet", "list")
	require.NoError(err)
	assert.Contains(out, "people")

	// Stored sheets open by name.
	out, err = runCLI(t, dataDir, "exec", "people", "--format", "json")
	require.NoError(err)
	var got sheetJSON
	require.NoError(json.Unmarshal([]byte(out), &got))
	assert.Len(got.Rows, 3)

	out, err = runCLI(t, dataDir, "sheet", "rm", "people")
	require.NoError(err)
	assert.Contains(out, "Removed sheet: people")

	out, err = runCLI(t, dataDir, "sheet", "list")
	require.NoError(err)
	assert.NotContains(out, "people")

	_, err = runCLI(t, dataDir, "sheet", "rm", "people")
	assert.Error(err)
}

func TestCommandsListsBindings(t *testing.T) {
	dataDir := t.TempDir()
	cfg := "bindings:\n  F: fill-nulls\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(cfg), 0644))

	out, err := runCLI(t, dataDir, "commands")
	require.NoError(t, err)

	assert.Contains(t, out, "fill-nulls")
	assert.Contains(t, out, "F")
	assert.Contains(t, out, "save-all")
}

func TestInvalidConfigShouldFail(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte("tasks:\n  retention: soon\n"), 0644))

	_, err := runCLI(t, dataDir, "commands")
	assert.Error(t, err)
}
