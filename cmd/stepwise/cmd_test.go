package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/aretw0/stepwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wizardFile = filepath.Join("..", "..", "internal", "cli", "testdata", "wizard.yaml")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stepwise version "+stepwise.Version+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", wizardFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wizard 'intake' is valid: 3 steps")

	_, err = execute(t, "validate", filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestStepsCommand(t *testing.T) {
	t.Setenv("STEPWISE_STORE_TYPE", "memory")

	out, err := execute(t, "steps", "--file", wizardFile, "--format", "json")
	require.NoError(t, err)

	var desc []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &desc))
	require.Len(t, desc, 3)
	assert.Equal(t, "name", desc[0]["key"])
}

func TestRootCommand_RejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "steps", "--file", wizardFile, "--log-format", "xml")
	assert.ErrorContains(t, err, "log.format")
}
