package docutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempDocPath(t *testing.T) {
	p1 := TempDocPath("/tmp/docs", ".pdf")
	p2 := TempDocPath("/tmp/docs", ".pdf")

	assert.True(t, strings.HasPrefix(filepath.Base(p1), "doc-"))
	assert.True(t, strings.HasSuffix(p1, ".pdf"))
	assert.Equal(t, "/tmp/docs", filepath.Dir(p1))
	assert.NotEqual(t, p1, p2)
}

func TestEnsureDirAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(dir, "f.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.NoError(t, Remove(file))

	// Removing a missing file is not an error.
	assert.NoError(t, Remove(file))
	assert.NoError(t, Remove(""))
}
