package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Translator translates a single word
type Translator interface {
	Translate(ctx context.Context, word, targetLang string) (string, error)
}

// LLMTranslator asks a text-completion service for a translation
type LLMTranslator struct {
	completer Completer
}

// NewLLMTranslator creates a translator backed by completer
func NewLLMTranslator(completer Completer) *LLMTranslator {
	return &LLMTranslator{completer: completer}
}

// Translate implements Translator
func (t *LLMTranslator) Translate(ctx context.Context, word, targetLang string) (string, error) {
	prompt := fmt.Sprintf("Translate the English word '%s' to the language with code '%s'. Respond with only the translation, nothing else.", word, targetLang)

	out, err := t.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	out = strings.Trim(strings.TrimSpace(out), `"'.`)
	if out == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return out, nil
}

// TranslationCache stores translations in memory for batch operations
type TranslationCache struct {
	mu           sync.Mutex
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

func cacheKey(word, lang string) string {
	return lang + "\x00" + strings.ToLower(word)
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(word, lang, translation string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.translations[cacheKey(word, lang)] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(word, lang string) (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	translation, ok := tc.translations[cacheKey(word, lang)]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.translations)
}
