package dictionary

// NotFound is the headword of a record extracted from a page without one
const NotFound = "N/A"

// SenseEntry is one definition block with the context it inherits
type SenseEntry struct {
	PartOfSpeech string   // from the enclosing entry block, may be empty
	Subheading   string   // guideword of the enclosing sense, may be empty
	Definition   string   // trimmed, trailing colon removed
	Examples     []string // example sentences in document order
}

// LexicalRecord is everything extracted from one dictionary page
type LexicalRecord struct {
	Word          string
	Pronunciation string   // slashes stripped
	AudioURLs     []string // absolute, in source order
	Entries       []SenseEntry
}

// Found reports whether the page carried a headword
func (r *LexicalRecord) Found() bool {
	return r != nil && r.Word != "" && r.Word != NotFound
}

// notFoundRecord returns the sentinel record
func notFoundRecord() *LexicalRecord {
	return &LexicalRecord{
		Word:      NotFound,
		AudioURLs: []string{},
		Entries:   []SenseEntry{},
	}
}
