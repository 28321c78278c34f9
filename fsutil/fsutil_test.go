package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirExists(t *testing.T) {
	testDir := t.TempDir()

	exists, err := DirExists(testDir)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = DirExists(filepath.Join(testDir, "missing"))
	require.NoError(t, err)
	require.False(t, exists)

	path := filepath.Join(testDir, "file")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err = DirExists(path)
	require.ErrorIs(t, err, ErrNotDir)
}

func TestMkdirParent(t *testing.T) {
	var (
		testDir = t.TempDir()
		path    = filepath.Join(testDir, "a", "b", "logs.db")
	)

	require.NoError(t, MkdirParent(path))
	require.NoError(t, MkdirParent(path))

	stats, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, stats.IsDir())
}

func TestWriteAtomic(t *testing.T) {
	for _, exists := range []bool{false, true} {
		t.Run(strconv.FormatBool(exists), func(t *testing.T) {
			var (
				testDir = t.TempDir()
				path    = filepath.Join(testDir, "export.log")
			)

			if exists {
				require.NoError(t, os.WriteFile(path, []byte("<existing data>"), 0o777))
			}

			err := WriteAtomic(path, func(w io.Writer) error {
				_, err := w.Write([]byte("Hello, World!"))
				return err
			})
			require.NoError(t, err)

			stats, err := os.Stat(path)
			require.NoError(t, err)
			require.Equal(t, DefaultFileMode, stats.Mode())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, []byte("Hello, World!"), data)

			entries, err := os.ReadDir(testDir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})
	}
}

func TestWriteAtomicFailureLeavesExisting(t *testing.T) {
	var (
		testDir = t.TempDir()
		path    = filepath.Join(testDir, "export.log")
	)

	require.NoError(t, os.WriteFile(path, []byte("<existing data>"), 0o600))

	err := WriteAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return assert.AnError
	})
	require.True(t, errors.Is(err, assert.AnError))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("<existing data>"), data)

	entries, err := os.ReadDir(testDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
