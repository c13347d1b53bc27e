package enrich

import (
	"context"
	"io"
	"log/slog"

	"codeberg.org/snonux/lexicard/internal/anki"
	"codeberg.org/snonux/lexicard/internal/dictionary"
)

// Enricher applies the configured enrichments to a record. A nil
// highlighter or translator disables that enrichment.
type Enricher struct {
	highlighter Highlighter
	translator  Translator
	targetLang  string
	cache       *TranslationCache
	log         *slog.Logger
}

// NewEnricher creates an enricher
func NewEnricher(highlighter Highlighter, translator Translator, targetLang string, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Enricher{
		highlighter: highlighter,
		translator:  translator,
		targetLang:  targetLang,
		cache:       NewTranslationCache(),
		log:         logger.With("component", "enrich"),
	}
}

// Enrich never fails: each failed call falls back to the source text
func (e *Enricher) Enrich(ctx context.Context, record *dictionary.LexicalRecord) anki.Enrichment {
	var enrichment anki.Enrichment
	if e == nil || !record.Found() {
		return enrichment
	}

	if e.translator != nil {
		enrichment.Translation = e.translate(ctx, record.Word)
	}

	if e.highlighter != nil {
		enrichment.Examples = make([][]string, len(record.Entries))
		for i, entry := range record.Entries {
			enrichment.Examples[i] = make([]string, len(entry.Examples))
			for j, example := range entry.Examples {
				enrichment.Examples[i][j] = e.highlight(ctx, record.Word, example)
			}
		}
	}

	return enrichment
}

func (e *Enricher) translate(ctx context.Context, word string) string {
	if cached, ok := e.cache.Get(word, e.targetLang); ok {
		return cached
	}

	translation, err := e.translator.Translate(ctx, word, e.targetLang)
	if err != nil {
		e.log.WarnContext(ctx, "translation failed",
			slog.String("word", word),
			slog.String("lang", e.targetLang),
			slog.String("error", err.Error()),
		)
		return ""
	}

	e.cache.Add(word, e.targetLang, translation)
	return translation
}

func (e *Enricher) highlight(ctx context.Context, word, sentence string) string {
	highlighted, err := e.highlighter.Highlight(ctx, word, sentence)
	if err != nil {
		e.log.WarnContext(ctx, "highlight failed",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		return sentence
	}
	return highlighted
}
