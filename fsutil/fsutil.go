// Package fsutil contains the file system helpers used to lay out log databases and write exports.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// DefaultFileMode is used for exports, log entries may contain sensitive data so they're only readable by the owner.
	DefaultFileMode os.FileMode = 0o600

	// DefaultDirMode is used for the directories holding log databases.
	DefaultDirMode os.FileMode = 0o700
)

// ErrNotDir is returned by 'DirExists' if a file exists at the provided path.
var ErrNotDir = errors.New("not a directory")

// DirExists returns a boolean indicating whether a directory at the provided path exists.
func DirExists(path string) (bool, error) {
	stats, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if !stats.IsDir() {
		return false, ErrNotDir
	}

	return true, nil
}

// MkdirParent creates the parent directory of the provided path, and all of its parents, if it doesn't already exist.
func MkdirParent(path string) error {
	dir := filepath.Dir(path)

	exists, err := DirExists(dir)
	if err != nil || exists {
		return err
	}

	return os.MkdirAll(dir, DefaultDirMode)
}

// Create a new file at the provided path in write only mode, any existing file will be truncated when opening.
func Create(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFileMode)
	if err != nil {
		return nil, err
	}

	// The files mode may not be exactly what we provided due to a umask, we should update the permissions to be sure.
	err = file.Chmod(DefaultFileMode)
	if err != nil {
		file.Close()
		return nil, err
	}

	return file, nil
}

// WriteAtomic creates the file at the provided path with the data written by 'fn'. The data is written to a temporary
// file which is synced and then renamed into place, so readers never observe a partial file.
//
// NOTE: This only works to the degree that the underlying operating system guarantees that renames are atomic.
func WriteAtomic(path string, fn func(w io.Writer) error) error {
	temp := temporaryPath(path)

	err := writeAndSync(temp, fn)
	if err != nil {
		os.Remove(temp)
		return err
	}

	err = os.Rename(temp, path)
	if err != nil {
		os.Remove(temp)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func writeAndSync(path string, fn func(w io.Writer) error) error {
	file, err := Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	err = fn(file)
	if err != nil {
		return err
	}

	err = file.Sync()
	if err != nil {
		return err
	}

	return file.Close()
}

// temporaryPath returns a path in the same directory as the provided path, which leaves implicit context as to why the
// file was created.
func temporaryPath(path string) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf(".temporary_%s_%s", uuid.NewString(), filepath.Base(path)))
}
