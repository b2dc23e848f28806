package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigInitTestCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "init"}
	cmd.Flags().Bool("force", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrnfo", "config.toml")

	cmd, out := newConfigInitTestCmd(t)
	require.NoError(t, runConfigInit(cmd, []string{path}))
	assert.Contains(t, out.String(), "Wrote "+path)
	assert.FileExists(t, path)

	cmd, _ = newConfigInitTestCmd(t)
	err := runConfigInit(cmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cmd, _ = newConfigInitTestCmd(t, "--force")
	require.NoError(t, runConfigInit(cmd, []string{path}))
}

func TestConfigTest_Valid(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	path := filepath.Join(t.TempDir(), "config.toml")
	cmd, _ := newConfigInitTestCmd(t)
	require.NoError(t, runConfigInit(cmd, []string{path}))

	var out bytes.Buffer
	test := &cobra.Command{Use: "test"}
	test.SetOut(&out)
	require.NoError(t, runConfigTest(test, []string{path}))
	assert.Contains(t, out.String(), "Validating "+path)
	assert.Contains(t, out.String(), "language zh-CN")
	assert.Contains(t, out.String(), "Configuration valid!")
}

func TestConfigTest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[tmdb]
api_key = "${ARRNFO_TEST_UNSET_KEY}"

[log]
level = "loud"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	var out bytes.Buffer
	test := &cobra.Command{Use: "test"}
	test.SetOut(&out)
	err := runConfigTest(test, []string{path})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Missing environment variables:")
	assert.Contains(t, out.String(), "ARRNFO_TEST_UNSET_KEY")
	assert.Contains(t, out.String(), "Validation errors:")
}
