package types

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveSafePath_AllowsBareFilename(t *testing.T) {
	root := t.TempDir()

	full, err := ResolveSafePath(root, "note_Meeting_Notes.txt")
	if err != nil {
		t.Fatalf("resolve bare filename: %v", err)
	}
	if full != filepath.Join(root, "note_Meeting_Notes.txt") {
		t.Fatalf("expected path under root, got %s", full)
	}
}

func TestResolveSafePath_RejectsTraversal(t *testing.T) {
	root := t.TempDir()

	inputs := []string{
		"",
		".",
		"..",
		"../secret.txt",
		"..%2fsecret",
		"....",
		"notes/a.txt",
		`notes\a.txt`,
		"/etc/passwd",
		`C:\Windows\win.ini`,
		"a\x00b",
		"safe..txt",
	}
	for _, input := range inputs {
		_, err := ResolveSafePath(root, input)
		if err == nil {
			t.Fatalf("expected %q to be rejected", input)
		}
		failure, ok := AsFailure(err)
		if !ok {
			t.Fatalf("expected failure for %q, got %T", input, err)
		}
		if failure.Kind != KindPathTraversal {
			t.Fatalf("expected path_traversal for %q, got %s", input, failure.Kind)
		}
	}
}

func TestReadSafeFile_ReadsAndClassifies(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "folder"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	data, err := ReadSafeFile(root, "hello.txt", 0)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if string(data) != "hi\n" {
		t.Fatalf("unexpected content %q", data)
	}

	_, err = ReadSafeFile(root, "missing.txt", 0)
	if failure, ok := AsFailure(err); !ok || failure.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	_, err = ReadSafeFile(root, "folder", 0)
	if failure, ok := AsFailure(err); !ok || failure.Kind != KindIOError {
		t.Fatalf("expected io_error for directory, got %v", err)
	}

	_, err = ReadSafeFile(root, "hello.txt", 2)
	if failure, ok := AsFailure(err); !ok || failure.Kind != KindIOError {
		t.Fatalf("expected io_error for oversized file, got %v", err)
	}
}

func TestReadSafeFile_RejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outsideRoot := t.TempDir()
	outsideFile := filepath.Join(outsideRoot, "secret.txt")
	if err := os.WriteFile(outsideFile, []byte("top secret"), 0o644); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	linkPath := filepath.Join(root, "linked.txt")
	if err := os.Symlink(outsideFile, linkPath); err != nil {
		t.Skipf("symlink not supported in current environment: %v", err)
	}

	_, err := ReadSafeFile(root, "linked.txt", 0)
	if err == nil {
		t.Fatal("expected symlink escape to be rejected")
	}
	failure, ok := AsFailure(err)
	if !ok || failure.Kind != KindPathTraversal {
		t.Fatalf("expected path_traversal, got %v", err)
	}
	if !strings.Contains(failure.Message, "outside the allowed directory") {
		t.Fatalf("unexpected message %q", failure.Message)
	}
}
