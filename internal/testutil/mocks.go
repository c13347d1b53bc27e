package testutil

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// NotFoundPage is served for unknown words, like the dictionary's search
// fallback page: no headword element
const NotFoundPage = `<html><body><div class="search-page">Your search terms did not match any entries.</div></body></html>`

// Sense is one definition block of a generated entry page
type Sense struct {
	PartOfSpeech string
	Guideword    string
	Definition   string
	Examples     []string
}

// EntryPage renders a minimal dictionary entry page for word with one
// entry block per sense
func EntryPage(word string, senses ...Sense) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="pr dictionary">`)
	fmt.Fprintf(&b, `<span class="hw dhw">%s</span>`, html.EscapeString(word))
	for _, s := range senses {
		b.WriteString(`<div class="pr entry-body__el">`)
		fmt.Fprintf(&b, `<span class="pos dpos">%s</span>`, html.EscapeString(s.PartOfSpeech))
		b.WriteString(`<div class="pr dsense">`)
		if s.Guideword != "" {
			fmt.Fprintf(&b, `<span class="guideword dsense_gw">(%s)</span>`, html.EscapeString(s.Guideword))
		}
		fmt.Fprintf(&b, `<div class="def-block ddef_block"><div class="def ddef_d db">%s:</div>`, html.EscapeString(s.Definition))
		for _, ex := range s.Examples {
			fmt.Fprintf(&b, `<div class="examp dexamp"><span class="eg deg">%s</span></div>`, html.EscapeString(ex))
		}
		b.WriteString(`</div></div></div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// DictionaryServer serves entry pages under /dictionary/<variant>/<word>
type DictionaryServer struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]string
	statuses map[string]int
	hits     map[string]int
}

// NewDictionaryServer starts a server that is closed when the test ends.
// Unknown paths get NotFoundPage with status 200.
func NewDictionaryServer(t *testing.T) *DictionaryServer {
	t.Helper()

	s := &DictionaryServer{
		pages:    make(map[string]string),
		statuses: make(map[string]int),
		hits:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func entryPath(variant, word string) string {
	return "/dictionary/" + variant + "/" + word
}

// AddPage serves markup for word in variant
func (s *DictionaryServer) AddPage(variant, word, markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[entryPath(variant, word)] = markup
}

// FailWith answers every request for word in variant with status
func (s *DictionaryServer) FailWith(variant, word string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[entryPath(variant, word)] = status
}

// Hits returns how often word was requested in variant
func (s *DictionaryServer) Hits(variant, word string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[entryPath(variant, word)]
}

func (s *DictionaryServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failed := s.statuses[r.URL.Path]
	page, found := s.pages[r.URL.Path]
	s.mu.Unlock()

	if failed {
		w.WriteHeader(status)
		return
	}
	if !found {
		page = NotFoundPage
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

// MockCompleter is a scriptable text-completion service
type MockCompleter struct {
	Reply func(prompt string) (string, error)

	mu    sync.Mutex
	calls []string
}

// Complete records prompt and returns Reply's answer
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	m.mu.Unlock()

	if m.Reply == nil {
		return "", fmt.Errorf("no reply configured")
	}
	return m.Reply(prompt)
}

// Calls returns the prompts received so far
func (m *MockCompleter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
