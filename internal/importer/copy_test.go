package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCopyFile(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "test.mkv")
	content := "test video content"
	writeFile(t, srcPath, content)

	dstPath := filepath.Join(t.TempDir(), "nested", "deep", "copied.mkv")
	size, err := CopyFile(srcPath, dstPath)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.FileExists(t, srcPath)
}

func TestCopyFile_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mkv")
	dstPath := filepath.Join(dir, "dst.mkv")
	writeFile(t, srcPath, "new")
	writeFile(t, dstPath, "existing")

	_, err := CopyFile(srcPath, dstPath)
	assert.ErrorIs(t, err, ErrDestinationExists)

	got, _ := os.ReadFile(dstPath)
	assert.Equal(t, "existing", string(got), "existing file must not be overwritten")
}

func TestCopyFile_SourceNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := CopyFile(filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "dst.mkv"))
	assert.ErrorIs(t, err, ErrCopyFailed)
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mkv")
	dstPath := filepath.Join(dir, "Season 01", "dst.mkv")
	writeFile(t, srcPath, "video")

	require.NoError(t, MoveFile(srcPath, dstPath))
	assert.NoFileExists(t, srcPath)
	assert.FileExists(t, dstPath)
}

func TestMoveFile_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mkv")
	dstPath := filepath.Join(dir, "dst.mkv")
	writeFile(t, srcPath, "new")
	writeFile(t, dstPath, "existing")

	assert.ErrorIs(t, MoveFile(srcPath, dstPath), ErrDestinationExists)
	assert.FileExists(t, srcPath)
}

func TestMoveFile_SourceNotFound(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "dst.mkv"))
	assert.ErrorIs(t, err, ErrMoveFailed)
}
