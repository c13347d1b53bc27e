package anki

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Header lines required by the Anki plain-text importer
var Header = []string{
	"#separator:tab",
	"#html:true",
	"#tags column:11",
}

// WriteNotes writes the header and one line per note to path. The file
// is written to a temporary name first and renamed into place.
func WriteNotes(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create notes file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range Header {
		fmt.Fprintln(w, line)
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write notes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close notes file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set notes file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move notes file into place: %w", err)
	}
	return nil
}

// WriteWordList writes one word per line, used for the not-found report
func WriteWordList(path string, words []string) error {
	var content []byte
	for _, word := range words {
		content = append(content, word...)
		content = append(content, '\n')
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	return nil
}
