package fsx

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(dir, "a.res", []byte("hello")))

	b, err := os.ReadFile(filepath.Join(dir, "a.res"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assertNoTemp(t, dir)
}

func TestWrite_Replaces(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(dir, "a.res", []byte("old contents")))
	require.NoError(t, WriteFile(dir, "a.res", []byte("new")))

	b, err := os.ReadFile(filepath.Join(dir, "a.res"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
}

func TestWrite_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	require.NoError(t, WriteFile(dir, "x", []byte("1")))
	assert.FileExists(t, filepath.Join(dir, "x"))
}

func TestWrite_FillErrorKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(dir, "a.res", []byte("keep")))

	boom := errors.New("boom")
	err := Write(dir, "a.res", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := os.ReadFile(filepath.Join(dir, "a.res"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(b))
	assertNoTemp(t, dir)
}

func TestWrite_RenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	old := renameFunc
	renameFunc = func(string, string) error { return os.ErrPermission }
	t.Cleanup(func() { renameFunc = old })

	err := WriteFile(dir, "a.res", []byte("x"))
	require.ErrorIs(t, err, os.ErrPermission)
	assert.NoFileExists(t, filepath.Join(dir, "a.res"))
	assertNoTemp(t, dir)
}
