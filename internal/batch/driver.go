package batch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/lexicard/internal/anki"
	"codeberg.org/snonux/lexicard/internal/dictionary"
)

// Fetcher downloads the markup at url
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Enricher adds optional translation and highlighting to a record
type Enricher interface {
	Enrich(ctx context.Context, record *dictionary.LexicalRecord) anki.Enrichment
}

// Formatter renders a record as one flashcard line
type Formatter interface {
	Format(record *dictionary.LexicalRecord, enrichment anki.Enrichment, id int) string
}

// Status is the outcome of resolving one word
type Status int

const (
	StatusResolved Status = iota // found on the primary variant
	StatusFallback               // found on a later variant
	StatusNotFound
	StatusInvalid // rejected before fetching
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusFallback:
		return "fallback"
	case StatusNotFound:
		return "not found"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Progress describes a finished word. Index is 1-based.
type Progress struct {
	Index   int
	Total   int
	Word    string
	Status  Status
	Variant string
}

// Result is the outcome of one batch run
type Result struct {
	Notes    []string // flashcard lines in input order
	NotFound []string // unresolved words in input order
	NextID   int      // first id not used by Notes
}

// Driver runs batches
type Driver struct {
	fetcher   Fetcher
	formatter Formatter
	enricher  Enricher
	site      string
	variants  []string
	workers   int
	progress  func(Progress)
	log       *slog.Logger
}

// Option configures a Driver
type Option func(*Driver)

// WithEnricher enables enrichment of resolved records
func WithEnricher(enricher Enricher) Option {
	return func(d *Driver) {
		d.enricher = enricher
	}
}

// WithSite sets the dictionary host
func WithSite(site string) Option {
	return func(d *Driver) {
		if site != "" {
			d.site = site
		}
	}
}

// WithVariants sets the variants tried per word, primary first
func WithVariants(variants ...string) Option {
	return func(d *Driver) {
		if len(variants) > 0 {
			d.variants = variants
		}
	}
}

// WithWorkers sets how many words are resolved concurrently
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithProgress registers a callback invoked once per finished word.
// Calls are serialized but arrive in completion order.
func WithProgress(fn func(Progress)) Option {
	return func(d *Driver) {
		d.progress = fn
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.log = logger
		}
	}
}

// NewDriver creates a driver that looks words up with fetcher and
// renders them with formatter
func NewDriver(fetcher Fetcher, formatter Formatter, opts ...Option) *Driver {
	d := &Driver{
		fetcher:   fetcher,
		formatter: formatter,
		site:      dictionary.DefaultSite,
		variants:  dictionary.Variants,
		workers:   1,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "batch")
	return d
}

// resolution is what a worker produces for one word
type resolution struct {
	word       string
	record     *dictionary.LexicalRecord
	enrichment anki.Enrichment
	status     Status
	variant    string
}

// RunBatch resolves words and formats the resolved ones with ids counting
// up from startID. Ids follow input order regardless of the number of
// workers. The only error is a cancelled context.
func (d *Driver) RunBatch(ctx context.Context, words []string, startID int) (*Result, error) {
	resolutions := make([]resolution, len(words))

	var mu sync.Mutex
	report := func(p Progress) {
		if d.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		d.progress(p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, word := range words {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := d.resolveWord(gctx, word)
			resolutions[i] = res
			report(Progress{
				Index:   i + 1,
				Total:   len(words),
				Word:    res.word,
				Status:  res.status,
				Variant: res.variant,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Notes:    []string{},
		NotFound: []string{},
		NextID:   startID,
	}
	for _, res := range resolutions {
		if res.record == nil {
			result.NotFound = append(result.NotFound, res.word)
			continue
		}
		result.Notes = append(result.Notes, d.formatter.Format(res.record, res.enrichment, result.NextID))
		result.NextID++
	}

	return result, nil
}

func (d *Driver) resolveWord(ctx context.Context, word string) resolution {
	word = strings.TrimSpace(word)
	res := resolution{word: word, status: StatusNotFound}

	if err := ValidateWord(word); err != nil {
		d.log.InfoContext(ctx, "skipping word", slog.String("error", err.Error()))
		res.status = StatusInvalid
		return res
	}

	record, variantIndex := d.Resolve(ctx, word)
	if record == nil {
		return res
	}

	res.record = record
	res.variant = d.variants[variantIndex]
	res.status = StatusResolved
	if variantIndex > 0 {
		res.status = StatusFallback
	}
	if d.enricher != nil {
		res.enrichment = d.enricher.Enrich(ctx, record)
	}
	return res
}

// Resolve looks word up on each variant in turn and returns the first
// record with a headword together with the index of its variant. A nil
// record means the word was not found on any variant.
func (d *Driver) Resolve(ctx context.Context, word string) (*dictionary.LexicalRecord, int) {
	for i, variant := range d.variants {
		if ctx.Err() != nil {
			return nil, -1
		}

		url := dictionary.EntryURL(d.site, variant, word)
		markup, err := d.fetcher.Fetch(ctx, url)
		if err != nil {
			d.log.WarnContext(ctx, "fetch failed",
				slog.String("word", word),
				slog.String("variant", variant),
				slog.String("error", err.Error()),
			)
			continue
		}

		record, err := dictionary.Extract(markup, url)
		if err != nil {
			d.log.WarnContext(ctx, "extract failed",
				slog.String("word", word),
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
			continue
		}

		if record.Found() {
			d.log.DebugContext(ctx, "resolved",
				slog.String("word", word),
				slog.String("variant", variant),
				slog.Int("entries", len(record.Entries)),
			)
			return record, i
		}
		d.log.DebugContext(ctx, "no headword", slog.String("word", word), slog.String("variant", variant))
	}
	return nil, -1
}
