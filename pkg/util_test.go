package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPathExists(t *testing.T) {
	exists, err := PathExists("/invalid/path/some-dir", true)
	assert.NoError(t, err)
	assert.False(t, exists)
	exists, err = PathExists("/invalid/path/some-file", false)
	assert.NoError(t, err)
	assert.False(t, exists)

	dir := t.TempDir()
	exists, err = PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)
	// dir is not a file
	exists, err = PathExists(dir, false)
	require.NoError(t, err)
	assert.False(t, exists)

	f := filepath.Join(dir, "f.json")
	require.NoError(t, os.WriteFile(f, []byte("{}"), 0o644))
	exists, err = PathExists(f, false)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	exists, err := PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)
	// second call is a no-op
	require.NoError(t, EnsureDir(dir))
}
