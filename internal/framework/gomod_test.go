package framework

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameworkModule = "github.com/povarna/generative-ai-agents/agent-fwk"

func TestPinModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(path, []byte(`module example.com/echo-agent

go 1.24

require (
	github.com/povarna/generative-ai-agents/agent-fwk v1.0.0
	github.com/rs/zerolog v1.34.0
)
`), 0o644))

	require.NoError(t, pinModule(path, frameworkModule, "v1.2.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), frameworkModule+" v1.2.0")
	assert.NotContains(t, string(data), frameworkModule+" v1.0.0")
	assert.Contains(t, string(data), "github.com/rs/zerolog v1.34.0")
}

func TestPinModule_NotRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(path, []byte("module example.com/echo-agent\n\ngo 1.24\n"), 0o644))

	err := pinModule(path, frameworkModule, "v1.2.0")
	assert.True(t, errors.Is(err, ErrModuleNotRequired))
}

func TestPinModule_MissingFile(t *testing.T) {
	err := pinModule(filepath.Join(t.TempDir(), "go.mod"), frameworkModule, "v1.2.0")
	assert.Error(t, err)
}
