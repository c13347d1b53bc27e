package anki

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/lexicard/internal"
	"codeberg.org/snonux/lexicard/internal/dictionary"
)

// LineBreak separates numbered lines inside one field
const LineBreak = "<br>"

// FieldCount is the number of tab-separated fields of a note line
const FieldCount = 9

// Field positions of a note line
const (
	FieldID = iota
	FieldWord
	FieldPronunciation
	FieldPartsOfSpeech
	FieldDefinitions
	FieldExamples
	FieldTranslation
	FieldImage
	FieldSound
)

// Enrichment carries the optional per-record additions. Examples, when
// set, is aligned with the record entries and replaces their example text.
type Enrichment struct {
	Translation string
	Examples    [][]string
}

// FormatterOptions configures note formatting
type FormatterOptions struct {
	IDPrefix string // literal prefix of the sequential note id
}

// DefaultFormatterOptions returns sensible defaults
func DefaultFormatterOptions() *FormatterOptions {
	return &FormatterOptions{
		IDPrefix: "cam",
	}
}

// Formatter creates note lines
type Formatter struct {
	options *FormatterOptions
}

// NewFormatter creates a new formatter
func NewFormatter(options *FormatterOptions) *Formatter {
	if options == nil {
		options = DefaultFormatterOptions()
	}
	return &Formatter{options: options}
}

// Format returns the note line of record with sequential id
func (f *Formatter) Format(record *dictionary.LexicalRecord, enrichment Enrichment, id int) string {
	return strings.Join(f.Fields(record, enrichment, id), "\t")
}

// Fields returns the sanitized fields of the note line in column order
func (f *Formatter) Fields(record *dictionary.LexicalRecord, enrichment Enrichment, id int) []string {
	fields := make([]string, FieldCount)
	fields[FieldID] = internal.FormatNoteID(f.options.IDPrefix, id)
	fields[FieldWord] = record.Word
	fields[FieldPronunciation] = record.Pronunciation
	fields[FieldPartsOfSpeech] = strings.Join(PartsOfSpeech(record.Entries), ", ")
	fields[FieldDefinitions] = formatDefinitions(record.Entries)
	fields[FieldExamples] = formatExamples(record.Entries, enrichment.Examples)
	fields[FieldTranslation] = enrichment.Translation
	fields[FieldImage] = ""
	fields[FieldSound] = formatSoundField(record.AudioURLs)

	for i := range fields {
		fields[i] = internal.SanitizeField(fields[i])
	}
	return fields
}

// PartsOfSpeech returns the distinct non-empty parts of speech in
// first-seen order
func PartsOfSpeech(entries []dictionary.SenseEntry) []string {
	seen := make(map[string]bool)
	parts := []string{}
	for _, entry := range entries {
		if entry.PartOfSpeech == "" || seen[entry.PartOfSpeech] {
			continue
		}
		seen[entry.PartOfSpeech] = true
		parts = append(parts, entry.PartOfSpeech)
	}
	return parts
}

// prefixDiscriminates reports whether the entries span more than one part
// of speech, in which case each definition is labelled with its own
func prefixDiscriminates(entries []dictionary.SenseEntry) bool {
	for _, entry := range entries {
		if entry.PartOfSpeech != entries[0].PartOfSpeech {
			return true
		}
	}
	return false
}

func formatDefinitions(entries []dictionary.SenseEntry) string {
	withPrefix := prefixDiscriminates(entries)

	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		label := ""
		if withPrefix {
			label = definitionLabel(entry)
		}
		if label == "" {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, entry.Definition))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, label, entry.Definition))
		}
	}
	return strings.Join(lines, LineBreak)
}

// definitionLabel renders "verb (ACCEPT)", "verb" or "(ACCEPT)"
func definitionLabel(entry dictionary.SenseEntry) string {
	switch {
	case entry.PartOfSpeech != "" && entry.Subheading != "":
		return fmt.Sprintf("%s (%s)", entry.PartOfSpeech, entry.Subheading)
	case entry.Subheading != "":
		return fmt.Sprintf("(%s)", entry.Subheading)
	default:
		return entry.PartOfSpeech
	}
}

// formatExamples numbers each example with its entry number so that
// examples line up with their definitions
func formatExamples(entries []dictionary.SenseEntry, enriched [][]string) string {
	var lines []string
	for i, entry := range entries {
		examples := entry.Examples
		if i < len(enriched) && len(enriched[i]) == len(entry.Examples) {
			examples = enriched[i]
		}
		for _, example := range examples {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, example))
		}
	}
	return strings.Join(lines, LineBreak)
}

// formatSoundField references the first audio URL. The directive is
// emitted even without audio, yielding "[sound:]".
func formatSoundField(audioURLs []string) string {
	first := ""
	if len(audioURLs) > 0 {
		first = audioURLs[0]
	}
	return fmt.Sprintf("[sound:%s]", first)
}
