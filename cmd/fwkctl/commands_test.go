package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyAgent = `package main

type Weather struct{}

func (w *Weather) Process(ctx context.Context, message string, msgContext map[string]any) (string, error) {
	return "sunny", nil
}
`

func agentDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "weather-agent")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(legacyAgent), 0o644))
	t.Setenv("AGENT_NAME", "")
	t.Setenv("AGENT_ROOT", "")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	dir := agentDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "framework.lock"), []byte("v1.1.0\n"), 0o644))

	out, err := execute(t, "version", "--dir", dir)
	require.NoError(t, err)

	var info models.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.1.0", info.CurrentVersion)
}

func TestMigrationInfoCmd(t *testing.T) {
	dir := agentDir(t)

	out, err := execute(t, "migration-info", "v1.1.0", "--dir", dir)
	require.NoError(t, err)

	var info models.MigrationInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.True(t, info.MigrationAvailable)
	assert.True(t, info.HasCodeChanges)
	assert.Equal(t, "1.1.0", info.ToVersion)
}

func TestMigrateCmd_DryRun(t *testing.T) {
	dir := agentDir(t)

	out, err := execute(t, "migrate", "1.1.0", "--dry-run", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "--- a/main.go")
	assert.Contains(t, out, "+func (w *Weather) ProcessMessage(")

	data, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, legacyAgent, string(data), "dry run must not write")
}

func TestMigrateCmd_Apply(t *testing.T) {
	dir := agentDir(t)

	_, err := execute(t, "migrate", "1.1.0", "--dir", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ProcessMessage(ctx context.Context, message string, msgContext map[string]any, opts ...fwk.MessageOption)")
}

func TestCloneCmd(t *testing.T) {
	dir := agentDir(t)

	out, err := execute(t, "clone", "weather-trial", "--dir", dir)
	require.NoError(t, err)

	var result models.CloneResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, filepath.Join(filepath.Dir(dir), "weather-trial"), result.ClonePath)
	assert.FileExists(t, filepath.Join(result.ClonePath, "main.go"))

	_, err = execute(t, "clone", "weather-trial", "--dir", dir)
	assert.Error(t, err)
}
