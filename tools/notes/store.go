// Package notes implements save_note and read_file over a single storage
// root, plus a watcher that reports out-of-band changes to that root.
package notes

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

// DefaultMaxReadBytes caps read_file when no limit is configured.
const DefaultMaxReadBytes int64 = 1 << 20

// Storage owns the persisted bytes of notes and readable files.
type Storage interface {
	// Write replaces name with data. Concurrent writers to the same name
	// race; the last rename wins and readers never see a partial file.
	Write(name string, data []byte) error
	// Read returns the contents of name. Failures are *types.Failure.
	Read(name string) ([]byte, error)
	Root() string
}

// FileStorage is a Storage rooted at one directory.
type FileStorage struct {
	root         string
	maxReadBytes int64
}

// NewFileStorage creates root if needed.
func NewFileStorage(root string, maxReadBytes int64) (*FileStorage, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if maxReadBytes <= 0 {
		maxReadBytes = DefaultMaxReadBytes
	}
	return &FileStorage{root: abs, maxReadBytes: maxReadBytes}, nil
}

func (s *FileStorage) Root() string { return s.root }

func (s *FileStorage) Write(name string, data []byte) error {
	target, err := types.ResolveSafePath(s.root, name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, "."+name+".*.tmp")
	if err != nil {
		return types.WrapFailure(types.KindIOError, fmt.Sprintf("could not write %q", name), err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return types.WrapFailure(types.KindIOError, fmt.Sprintf("could not write %q", name), cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return types.WrapFailure(types.KindIOError, fmt.Sprintf("could not write %q", name), err)
	}
	return nil
}

func (s *FileStorage) Read(name string) ([]byte, error) {
	return types.ReadSafeFile(s.root, name, s.maxReadBytes)
}
