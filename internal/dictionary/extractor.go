package dictionary

import (
	"fmt"
	"net/url"
	"strings"
)

// Element classes of the Cambridge Dictionary entry page
const (
	classDictionary    = "dictionary"
	classHeadword      = "hw dhw"
	classPronunciation = "pron dpron"
	classPartOfSpeech  = "pos dpos"
	classEntryBlock    = "entry-body__el"
	classSenseBlock    = "dsense"
	classGuideword     = "guideword dsense_gw"
	classDefBlock      = "ddef_block"
	classDefinition    = "def ddef_d"
	classExample       = "examp dexamp"
	classExampleText   = "eg"
)

// Extract parses markup fetched from baseURL into a LexicalRecord.
// A page without a headword yields the NotFound sentinel record.
// Only markup that cannot be parsed at all returns an error.
func Extract(markup, baseURL string) (*LexicalRecord, error) {
	root, err := ParseDocument(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	return ExtractNode(root, base), nil
}

// ExtractNode runs the extraction algorithm on an already parsed tree
func ExtractNode(root Node, base *url.URL) *LexicalRecord {
	// Pages carry several dictionaries (learner, American, business);
	// only the first one is read.
	scope := root
	if dict := root.First("div", classDictionary); dict != nil {
		scope = dict
	}

	headword := scope.First("span", classHeadword)
	if headword == nil {
		return notFoundRecord()
	}

	word := normalizeText(headword.Text())
	if word == "" {
		return notFoundRecord()
	}

	return &LexicalRecord{
		Word:          word,
		Pronunciation: extractPronunciation(scope),
		AudioURLs:     extractAudioURLs(scope, base),
		Entries:       extractEntries(scope),
	}
}

func extractPronunciation(scope Node) string {
	pron := scope.First("span", classPronunciation)
	if pron == nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(normalizeText(pron.Text()), "/", ""))
}

func extractAudioURLs(scope Node, base *url.URL) []string {
	urls := []string{}

	audio := scope.First("audio", "")
	if audio == nil {
		return urls
	}

	for _, source := range audio.All("source", "") {
		src, ok := source.Attr("src")
		src = strings.TrimSpace(src)
		if !ok || src == "" {
			continue
		}
		urls = append(urls, resolveURL(base, src))
	}
	return urls
}

// resolveURL makes ref absolute against base, leaving it as is when
// either side cannot be parsed
func resolveURL(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}

func extractEntries(scope Node) []SenseEntry {
	entries := []SenseEntry{}

	blocks := scope.All("div", classEntryBlock)
	if len(blocks) == 0 {
		// Older layout without entry blocks: the whole scope is one entry
		blocks = []Node{scope}
	}

	for _, block := range blocks {
		pos := textOf(block.First("span", classPartOfSpeech))

		senses := block.All("div", classSenseBlock)
		if len(senses) == 0 {
			entries = append(entries, extractDefinitions(block, pos, "")...)
			continue
		}

		for _, sense := range senses {
			subheading := guideword(sense.First("span", classGuideword))
			entries = append(entries, extractDefinitions(sense, pos, subheading)...)
		}
	}

	return entries
}

func extractDefinitions(parent Node, pos, subheading string) []SenseEntry {
	var entries []SenseEntry
	for _, defBlock := range parent.All("div", classDefBlock) {
		entries = append(entries, SenseEntry{
			PartOfSpeech: pos,
			Subheading:   subheading,
			Definition:   cleanDefinition(textOf(defBlock.First("div", classDefinition))),
			Examples:     extractExamples(defBlock),
		})
	}
	return entries
}

func extractExamples(defBlock Node) []string {
	examples := []string{}
	for _, ex := range defBlock.All("div", classExample) {
		text := textOf(ex.First("span", classExampleText))
		if text == "" {
			text = textOf(ex)
		}
		if text != "" {
			examples = append(examples, text)
		}
	}
	return examples
}

// cleanDefinition drops the trailing colon Cambridge appends to most
// definitions. Definitions without one are left untouched.
func cleanDefinition(def string) string {
	def = strings.TrimSpace(def)
	if strings.HasSuffix(def, ":") {
		def = strings.TrimSpace(strings.TrimSuffix(def, ":"))
	}
	return def
}

// guideword reads "(ACCEPT)" as "ACCEPT"
func guideword(n Node) string {
	text := textOf(n)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	return strings.TrimSpace(text)
}

func textOf(n Node) string {
	if n == nil {
		return ""
	}
	return normalizeText(n.Text())
}

// normalizeText collapses every whitespace run into one space
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
