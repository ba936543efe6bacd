package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutableDir(t *testing.T) {
	dir := ExecutableDir()
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, dir, ExecutableDir(), "resolved once")
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x.json")

	assert.Equal(t, "", ResolvePath(""))
	assert.Equal(t, abs, ResolvePath(abs))
	assert.Equal(t, filepath.Join(ExecutableDir(), "data", "x.json"), ResolvePath(filepath.Join("data", "x.json")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server: {}"), 0o600))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir), "directories are not files")
	assert.False(t, FileExists(filepath.Join(dir, "missing.yaml")))
}
