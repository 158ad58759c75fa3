package types

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ResolveSafePath maps a bare filename onto root. Only basenames are
// accepted: separators, parent tokens and anything that would land outside
// root are rejected as path_traversal, never stripped.
func ResolveSafePath(root, name string) (string, error) {
	if name == "" {
		return "", NewFailure(KindPathTraversal, "filename must be a bare file name")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.ContainsRune(name, 0) {
		return "", Failuref(KindPathTraversal, "filename %q contains path components", name)
	}
	if name == "." || filepath.VolumeName(name) != "" || filepath.IsAbs(name) || filepath.Base(name) != name {
		return "", Failuref(KindPathTraversal, "filename %q contains path components", name)
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", WrapFailure(KindIOError, "storage root is unavailable", fmt.Errorf("resolve root: %w", err))
	}

	fullPath := filepath.Join(rootAbs, name)
	if !isWithinRoot(fullPath, rootAbs) || filepath.Dir(fullPath) != filepath.Clean(rootAbs) {
		return "", Failuref(KindPathTraversal, "filename %q resolves outside the allowed directory", name)
	}
	return fullPath, nil
}

// ReadSafeFile resolves name under root, follows symlinks and refuses any
// target outside root, then reads at most maxBytes (0 means unbounded).
func ReadSafeFile(root, name string, maxBytes int64) ([]byte, error) {
	fullPath, err := ResolveSafePath(root, name)
	if err != nil {
		return nil, err
	}

	rootReal, err := filepath.Abs(root)
	if err != nil {
		return nil, WrapFailure(KindIOError, "storage root is unavailable", err)
	}
	if resolvedRoot, resolveErr := filepath.EvalSymlinks(rootReal); resolveErr == nil {
		rootReal = resolvedRoot
	}

	resolvedPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return nil, classifyFSError(name, err)
	}
	if !isWithinRoot(resolvedPath, rootReal) {
		return nil, Failuref(KindPathTraversal, "filename %q resolves outside the allowed directory", name)
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return nil, classifyFSError(name, err)
	}
	if info.IsDir() {
		return nil, Failuref(KindIOError, "%q is a directory", name)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, Failuref(KindIOError, "%q exceeds the %d byte read limit", name, maxBytes)
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, classifyFSError(name, err)
	}
	return data, nil
}

func classifyFSError(name string, err error) *Failure {
	if errors.Is(err, fs.ErrNotExist) {
		return WrapFailure(KindNotFound, fmt.Sprintf("file %q not found", name), err)
	}
	return WrapFailure(KindIOError, fmt.Sprintf("file %q could not be read", name), err)
}

func isWithinRoot(path string, root string) bool {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)
	rootWithSep := cleanRoot + string(filepath.Separator)
	if cleanPath == cleanRoot {
		return true
	}
	return strings.HasPrefix(cleanPath, rootWithSep)
}
