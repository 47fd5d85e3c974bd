package persistence

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/hashvec/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vector.hcv")
	words := []uint64{1, 2, 3}

	err := SaveToFile(nil, path, func(w io.Writer) error {
		return WriteSlice(NewWriter(w), words)
	})
	require.NoError(t, err)

	var loaded []uint64
	var loadedSize int64
	err = LoadFromFile(nil, path, func(r io.Reader, size int64) error {
		loadedSize = size
		loaded = make([]uint64, 3)
		return ReadSliceInto(NewReader(r), loaded)
	})
	require.NoError(t, err)
	assert.Equal(t, words, loaded)
	assert.Equal(t, int64(24), loadedSize)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestSaveToFile_FailureKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vector.hcv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 4, ShortReadAfter: -1})

	err := SaveToFile(ffs, path, func(w io.Writer) error {
		_, err := w.Write(make([]byte, 1024))
		return err
	})
	// The buffered writer only hits the file on Flush.
	assert.ErrorIs(t, err, fs.ErrInjected)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up")
}

func TestSaveToFile_RenameFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vector.hcv")

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("vector.hcv", fs.Fault{FailAfterBytes: -1, ShortReadAfter: -1, FailOnRename: true})

	err := SaveToFile(ffs, path, func(w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	})
	assert.ErrorIs(t, err, fs.ErrInjected)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFromFile_Missing(t *testing.T) {
	err := LoadFromFile(nil, filepath.Join(t.TempDir(), "missing"), func(io.Reader, int64) error {
		return nil
	})
	assert.True(t, os.IsNotExist(err))
}
