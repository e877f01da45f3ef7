package organizer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"shelfarr/internal/logging"
)

func TestCopyAndRemoveMovesContentAcrossDirectories(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "staging", "Heat (1995).mkv")
	target := filepath.Join(dir, "library", "movies", "Heat (1995)", "Heat (1995).mkv")

	content := []byte("not actually a matroska stream, but 41 bytes")
	if err := os.MkdirAll(filepath.Dir(source), 0o755); err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}
	if err := os.WriteFile(source, content, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := copyAndRemove(logging.NewNop(), source, target); err != nil {
		t.Fatalf("copyAndRemove: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("target content differs from source: got %d bytes", len(got))
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("source should be removed after copy, stat err = %v", err)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := copyFile(filepath.Join(dir, "absent.mkv"), filepath.Join(dir, "out.mkv"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.mkv")); !os.IsNotExist(statErr) {
		t.Fatalf("no destination should be created, stat err = %v", statErr)
	}
}
