package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	info, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)
	assert.NotZero(t, info.Inode)
	assert.NotZero(t, info.ModTime)
}

func TestGetFileInfoMissing(t *testing.T) {
	_, err := GetFileInfo(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
