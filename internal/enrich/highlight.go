package enrich

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Marker tags wrapped around the headword inside a sentence
const (
	MarkerOpen  = `<span class="hl">`
	MarkerClose = `</span>`
)

// ErrInvalidHighlight is returned when a completion is not the input
// sentence with markers added
var ErrInvalidHighlight = errors.New("completion is not a highlighted copy of the sentence")

// Highlighter marks the headword inside an example sentence
type Highlighter interface {
	Highlight(ctx context.Context, word, sentence string) (string, error)
}

const highlightPrompt = `Wrap every occurrence of the given word in the sentence, including inflected forms, with <span class="hl"> and </span>. Do not change anything else. Reply with the resulting sentence only.

Word: abide
Sentence: I can't abide people who are always late.
Result: I can't <span class="hl">abide</span> people who are always late.

Word: %s
Sentence: %s
Result:`

// LLMHighlighter asks a text-completion service to place the markers
type LLMHighlighter struct {
	completer Completer
}

// NewLLMHighlighter creates a highlighter backed by completer
func NewLLMHighlighter(completer Completer) *LLMHighlighter {
	return &LLMHighlighter{completer: completer}
}

// Highlight implements Highlighter
func (h *LLMHighlighter) Highlight(ctx context.Context, word, sentence string) (string, error) {
	out, err := h.completer.Complete(ctx, fmt.Sprintf(highlightPrompt, word, sentence))
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "Result:"))
	if err := validateHighlight(sentence, out); err != nil {
		return "", err
	}
	return out, nil
}

// validateHighlight checks that highlighted is sentence plus markers
func validateHighlight(sentence, highlighted string) error {
	if !strings.Contains(highlighted, MarkerOpen) {
		return fmt.Errorf("%w: no marker", ErrInvalidHighlight)
	}
	stripped := strings.ReplaceAll(highlighted, MarkerOpen, "")
	stripped = strings.ReplaceAll(stripped, MarkerClose, "")
	if strings.Join(strings.Fields(stripped), " ") != strings.Join(strings.Fields(sentence), " ") {
		return fmt.Errorf("%w: sentence text changed", ErrInvalidHighlight)
	}
	return nil
}

// LocalHighlighter marks the headword and its regular inflections
// without any network call
type LocalHighlighter struct{}

// NewLocalHighlighter creates a local highlighter
func NewLocalHighlighter() *LocalHighlighter {
	return &LocalHighlighter{}
}

// Highlight implements Highlighter. A sentence without the word is
// returned unchanged.
func (h *LocalHighlighter) Highlight(ctx context.Context, word, sentence string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return sentence, nil
	}

	stem := regexp.QuoteMeta(word)
	// "abide" should also match "abided"/"abiding", which drop the final e
	if strings.HasSuffix(word, "e") && len(word) > 2 {
		stem = regexp.QuoteMeta(strings.TrimSuffix(word, "e")) + "e?"
	}

	re, err := regexp.Compile(`(?i)\b(` + stem + `(?:s|es|ed|d|ing)?)\b`)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(sentence, MarkerOpen+"${1}"+MarkerClose), nil
}
