package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// ParseWordList splits a comma-separated list into trimmed words.
// Empty tokens are dropped.
func ParseWordList(list string) []string {
	var words []string
	for _, token := range strings.Split(list, ",") {
		if token = strings.TrimSpace(token); token != "" {
			words = append(words, token)
		}
	}
	return words
}

// ReadBatchFile reads words from a file. Each line holds one word or a
// comma-separated list; blank lines and lines starting with # are skipped.
func ReadBatchFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, ParseWordList(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return words, nil
}

// ValidateWord checks that word can be looked up
func ValidateWord(word string) error {
	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("word cannot be empty")
	}

	for _, r := range word {
		if unicode.IsLetter(r) {
			return nil
		}
	}

	return fmt.Errorf("word %q must contain at least one letter", word)
}
