package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/lexicard/internal/testutil"
)

func TestRotateFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "anki_import.txt")
	testutil.CreateTestFile(t, path, []byte("old notes"))

	archived, err := RotateFile(path)
	if err != nil {
		t.Fatalf("RotateFile failed: %v", err)
	}

	testutil.AssertFileNotExists(t, path)
	testutil.AssertFileContent(t, archived, []byte("old notes"))

	if filepath.Dir(archived) != filepath.Join(tmpDir, "archive") {
		t.Errorf("Archived file in wrong directory: %s", archived)
	}

	base := filepath.Base(archived)
	if !strings.HasPrefix(base, "anki_import-") || !strings.HasSuffix(base, ".txt") {
		t.Errorf("Unexpected archive name: %s", base)
	}
}

func TestRotateFile_Missing(t *testing.T) {
	tmpDir := t.TempDir()

	archived, err := RotateFile(filepath.Join(tmpDir, "anki_import.txt"))
	if err != nil {
		t.Fatalf("RotateFile failed: %v", err)
	}
	if archived != "" {
		t.Errorf("Expected no archive path, got %s", archived)
	}

	testutil.AssertFileNotExists(t, filepath.Join(tmpDir, "archive"))
}

func TestRotateFile_Twice(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "anki_import.txt")

	var archived []string
	for _, content := range []string{"first", "second"} {
		testutil.CreateTestFile(t, path, []byte(content))
		p, err := RotateFile(path)
		if err != nil {
			t.Fatalf("RotateFile failed: %v", err)
		}
		archived = append(archived, p)
	}

	if archived[0] == archived[1] {
		t.Fatalf("Rotations collided: %s", archived[0])
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 archived files, got %d", len(entries))
	}
}

func TestRotateFile_Directory(t *testing.T) {
	if _, err := RotateFile(t.TempDir()); err == nil {
		t.Error("Expected error when rotating a directory")
	}
}
