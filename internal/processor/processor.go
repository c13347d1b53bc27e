package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"codeberg.org/snonux/lexicard/internal"
	"codeberg.org/snonux/lexicard/internal/anki"
	"codeberg.org/snonux/lexicard/internal/archive"
	"codeberg.org/snonux/lexicard/internal/batch"
	"codeberg.org/snonux/lexicard/internal/cache"
	"codeberg.org/snonux/lexicard/internal/cli"
	"codeberg.org/snonux/lexicard/internal/enrich"
	"codeberg.org/snonux/lexicard/internal/fetch"
)

// Output file names inside the output directory
const (
	NotesFile    = "anki_import.txt"
	NotFoundFile = "not_found.txt"
)

// ErrNoOutputDir aborts a run when no output directory was chosen
var ErrNoOutputDir = errors.New("no output directory selected")

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Summary describes a finished run
type Summary struct {
	Words        int
	StartID      int
	Result       *batch.Result
	NotesPath    string // empty when no note was written
	NotFoundPath string // empty when every word was found
	ArchivedPath string // previous notes file, if one was rotated
}

// Processor handles the main word processing logic
type Processor struct {
	flags  *cli.Flags
	in     *bufio.Reader
	out    io.Writer
	log    *slog.Logger
	closer []io.Closer
}

// NewProcessor creates a new word processor. A nil logger discards
// diagnostics.
func NewProcessor(flags *cli.Flags, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		flags: flags,
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		log:   logger,
	}
}

// SetInput replaces stdin for the interactive prompts
func (p *Processor) SetInput(r io.Reader) {
	p.in = bufio.NewReader(r)
}

// SetOutput replaces stdout for progress and summary output
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// Run resolves the words given by flags, args or the prompt and writes
// the notes file into the output directory
func (p *Processor) Run(ctx context.Context, args []string) (*Summary, error) {
	words, startID, err := p.collectWords(args)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no words given")
	}

	outputDir, err := p.resolveOutputDir()
	if err != nil {
		return nil, err
	}

	driver, err := p.newDriver(ctx)
	if err != nil {
		return nil, err
	}
	defer p.close()

	fmt.Fprintf(p.out, "Looking up %d words, first id %s\n", len(words), internal.FormatNoteID(p.flags.IDPrefix, startID))

	result, err := driver.RunBatch(ctx, words, startID)
	if err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	summary := &Summary{
		Words:   len(words),
		StartID: startID,
		Result:  result,
	}
	if err := p.writeOutput(outputDir, summary); err != nil {
		return nil, err
	}

	p.printSummary(summary)
	return summary, nil
}

// collectWords gathers words from --words, --batch and positional
// arguments, in that order. Without any, words and start id are prompted for.
func (p *Processor) collectWords(args []string) ([]string, int, error) {
	var words []string
	words = append(words, batch.ParseWordList(p.flags.Words)...)

	if p.flags.BatchFile != "" {
		fileWords, err := batch.ReadBatchFile(p.flags.BatchFile)
		if err != nil {
			return nil, 0, err
		}
		words = append(words, fileWords...)
	}

	if len(args) > 0 {
		words = append(words, batch.ParseWordList(strings.Join(args, ","))...)
	}

	if len(words) > 0 || p.flags.Words != "" || p.flags.BatchFile != "" {
		return words, p.flags.StartID, nil
	}

	answer, err := p.prompt("Words (comma-separated): ")
	if err != nil {
		return nil, 0, err
	}
	words = batch.ParseWordList(answer)

	answer, err = p.prompt(fmt.Sprintf("Start id [%d]: ", p.flags.StartID))
	if err != nil {
		return nil, 0, err
	}
	startID := p.flags.StartID
	if answer != "" {
		startID, err = strconv.Atoi(answer)
		if err != nil || startID < 0 {
			return nil, 0, fmt.Errorf("invalid start id %q", answer)
		}
	}

	return words, startID, nil
}

func (p *Processor) resolveOutputDir() (string, error) {
	dir := strings.TrimSpace(p.flags.OutputDir)
	if dir == "" {
		answer, err := p.prompt("Output directory: ")
		if err != nil {
			return "", err
		}
		dir = answer
	}
	if dir == "" {
		return "", ErrNoOutputDir
	}

	if strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[2:])
		}
	}

	// Create output directory (including parent directories)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// prompt reads one trimmed line. End of input counts as an empty answer.
func (p *Processor) prompt(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Processor) newDriver(ctx context.Context) (*batch.Driver, error) {
	fetchConfig := fetch.DefaultConfig()
	fetchConfig.Timeout = p.flags.Timeout
	fetchConfig.MaxAttempts = p.flags.Retries

	fetchOpts := []fetch.Option{fetch.WithLogger(p.log)}
	if p.flags.CachePath != "" {
		pageCache, err := cache.Open(p.flags.CachePath, p.flags.CacheTTL)
		if err != nil {
			return nil, err
		}
		p.closer = append(p.closer, pageCache)

		if pruned, err := pageCache.Prune(ctx); err != nil {
			p.log.WarnContext(ctx, "cache prune failed", slog.String("error", err.Error()))
		} else if pruned > 0 {
			p.log.DebugContext(ctx, "pruned cache", slog.Int64("pages", pruned))
		}
		fetchOpts = append(fetchOpts, fetch.WithCache(pageCache))
	}

	formatter := anki.NewFormatter(&anki.FormatterOptions{IDPrefix: p.flags.IDPrefix})

	driverOpts := []batch.Option{
		batch.WithSite(p.flags.Site),
		batch.WithWorkers(p.flags.Workers),
		batch.WithLogger(p.log),
		batch.WithProgress(p.printProgress),
	}

	enricher, err := p.newEnricher(ctx)
	if err != nil {
		return nil, err
	}
	if enricher != nil {
		driverOpts = append(driverOpts, batch.WithEnricher(enricher))
	}

	return batch.NewDriver(fetch.NewFetcher(fetchConfig, fetchOpts...), formatter, driverOpts...), nil
}

// newEnricher returns nil when neither highlighting nor translation is on
func (p *Processor) newEnricher(ctx context.Context) (*enrich.Enricher, error) {
	completers := make(map[string]enrich.Completer)
	completer := func(provider string) (enrich.Completer, error) {
		if c, ok := completers[provider]; ok {
			return c, nil
		}

		var next enrich.Completer
		switch provider {
		case cli.ProviderOpenAI:
			key := cli.GetOpenAIKey()
			if key == "" {
				fmt.Fprintf(p.out, "%s OpenAI API key not found, skipping %s enrichment\n", yellow("Warning:"), provider)
				return nil, nil
			}
			next = enrich.NewOpenAICompleter(key, p.flags.OpenAIModel)
		case cli.ProviderGemini:
			key := cli.GetGeminiKey()
			if key == "" {
				fmt.Fprintf(p.out, "%s Gemini API key not found, skipping %s enrichment\n", yellow("Warning:"), provider)
				return nil, nil
			}
			gemini, err := enrich.NewGeminiCompleter(ctx, key, p.flags.GeminiModel)
			if err != nil {
				return nil, err
			}
			next = gemini
		default:
			return nil, fmt.Errorf("unknown enrichment provider %q", provider)
		}

		c := enrich.NewBreakerCompleter(provider, next, enrich.DefaultBreakerSettings())
		completers[provider] = c
		return c, nil
	}

	var highlighter enrich.Highlighter
	switch p.flags.Highlight {
	case cli.ProviderNone, "":
	case cli.ProviderLocal:
		highlighter = enrich.NewLocalHighlighter()
	default:
		c, err := completer(p.flags.Highlight)
		if err != nil {
			return nil, err
		}
		if c != nil {
			highlighter = enrich.NewLLMHighlighter(c)
		}
	}

	var translator enrich.Translator
	switch p.flags.Translate {
	case cli.ProviderNone, "":
	default:
		c, err := completer(p.flags.Translate)
		if err != nil {
			return nil, err
		}
		if c != nil {
			translator = enrich.NewLLMTranslator(c)
		}
	}

	if highlighter == nil && translator == nil {
		return nil, nil
	}
	return enrich.NewEnricher(highlighter, translator, p.flags.TargetLang, p.log), nil
}

func (p *Processor) printProgress(progress batch.Progress) {
	var status string
	switch progress.Status {
	case batch.StatusResolved:
		status = green("found")
	case batch.StatusFallback:
		status = yellow("found in " + progress.Variant)
	case batch.StatusInvalid:
		status = red("invalid")
	default:
		status = red("not found")
	}
	fmt.Fprintf(p.out, "Processing %d/%d: %s ... %s\n", progress.Index, progress.Total, progress.Word, status)
}

func (p *Processor) writeOutput(outputDir string, summary *Summary) error {
	result := summary.Result

	if len(result.Notes) > 0 {
		notesPath := filepath.Join(outputDir, NotesFile)
		archived, err := archive.RotateFile(notesPath)
		if err != nil {
			return err
		}
		if err := anki.WriteNotes(notesPath, result.Notes); err != nil {
			return err
		}
		summary.NotesPath = notesPath
		summary.ArchivedPath = archived
	}

	notFoundPath := filepath.Join(outputDir, NotFoundFile)
	if len(result.NotFound) == 0 {
		// Drop the report of a previous run
		if err := os.Remove(notFoundPath); err != nil && !os.IsNotExist(err) {
			p.log.Warn("failed to remove stale not-found list", slog.String("error", err.Error()))
		}
		return nil
	}
	if err := anki.WriteWordList(notFoundPath, result.NotFound); err != nil {
		return err
	}
	summary.NotFoundPath = notFoundPath
	return nil
}

func (p *Processor) printSummary(summary *Summary) {
	result := summary.Result

	fmt.Fprintf(p.out, "\n=== %s ===\n", bold("Summary"))
	fmt.Fprintf(p.out, "Total words: %d\n", summary.Words)
	if len(result.Notes) > 0 {
		fmt.Fprintf(p.out, "Notes: %s (%s to %s)\n", green(len(result.Notes)),
			internal.FormatNoteID(p.flags.IDPrefix, summary.StartID),
			internal.FormatNoteID(p.flags.IDPrefix, result.NextID-1))
	} else {
		fmt.Fprintf(p.out, "Notes: %s\n", yellow(0))
	}
	if len(result.NotFound) > 0 {
		fmt.Fprintf(p.out, "Not found: %s (%s)\n", red(len(result.NotFound)), strings.Join(result.NotFound, ", "))
	}
	fmt.Fprintf(p.out, "Next id: %d\n", result.NextID)

	if summary.ArchivedPath != "" {
		fmt.Fprintf(p.out, "Previous notes archived to: %s\n", summary.ArchivedPath)
	}
	if summary.NotesPath != "" {
		fmt.Fprintf(p.out, "Anki import file: %s\n", summary.NotesPath)
	}
	if summary.NotFoundPath != "" {
		fmt.Fprintf(p.out, "Not found list: %s\n", summary.NotFoundPath)
	}
}

func (p *Processor) close() {
	for _, c := range p.closer {
		if err := c.Close(); err != nil {
			p.log.Warn("close failed", slog.String("error", err.Error()))
		}
	}
	p.closer = nil
}
