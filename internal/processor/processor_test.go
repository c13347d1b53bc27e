package processor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"codeberg.org/snonux/lexicard/internal/anki"
	"codeberg.org/snonux/lexicard/internal/cli"
	"codeberg.org/snonux/lexicard/internal/dictionary"
	"codeberg.org/snonux/lexicard/internal/testutil"
)

func init() {
	color.NoColor = true
}

func newTestServer(t *testing.T) *testutil.DictionaryServer {
	t.Helper()

	server := testutil.NewDictionaryServer(t)
	server.AddPage(dictionary.VariantLearner, "abide", testutil.EntryPage("abide",
		testutil.Sense{PartOfSpeech: "verb", Definition: "to accept something although you do not like it",
			Examples: []string{"I can't abide rude people."}}))
	server.AddPage(dictionary.VariantEnglish, "quark", testutil.EntryPage("quark",
		testutil.Sense{PartOfSpeech: "noun", Definition: "a very small particle"}))
	return server
}

func newTestProcessor(t *testing.T, server *testutil.DictionaryServer, input string) (*Processor, *cli.Flags, *bytes.Buffer) {
	t.Helper()

	flags := cli.NewFlags()
	flags.Site = server.URL
	flags.Retries = 1
	flags.OutputDir = t.TempDir()

	var out bytes.Buffer
	p := NewProcessor(flags, nil)
	p.SetInput(strings.NewReader(input))
	p.SetOutput(&out)
	return p, flags, &out
}

func TestRun_WritesNotesAndNotFound(t *testing.T) {
	server := newTestServer(t)
	p, flags, out := newTestProcessor(t, server, "")
	flags.StartID = 5

	summary, err := p.Run(context.Background(), []string{"abide", "zzzq, quark"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Result.NextID != 7 {
		t.Errorf("Expected next id 7, got %d", summary.Result.NextID)
	}

	notesPath := filepath.Join(flags.OutputDir, NotesFile)
	lines := testutil.ReadLines(t, notesPath)
	if len(lines) != len(anki.Header)+2 {
		t.Fatalf("Expected header and 2 notes, got %d lines", len(lines))
	}
	for i, h := range anki.Header {
		if lines[i] != h {
			t.Errorf("Header line %d = %q, want %q", i, lines[i], h)
		}
	}
	if !strings.HasPrefix(lines[3], "cam0005\tabide\t") || !strings.HasPrefix(lines[4], "cam0006\tquark\t") {
		t.Errorf("Unexpected notes:\n%s\n%s", lines[3], lines[4])
	}

	testutil.AssertFileContent(t, filepath.Join(flags.OutputDir, NotFoundFile), []byte("zzzq\n"))

	output := out.String()
	for _, want := range []string{"abide ... found", "quark ... found in english", "zzzq ... not found", "Next id: 7"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestRun_RotatesPreviousNotes(t *testing.T) {
	server := newTestServer(t)
	p, flags, _ := newTestProcessor(t, server, "")
	notesPath := filepath.Join(flags.OutputDir, NotesFile)
	testutil.CreateTestFile(t, notesPath, []byte("previous run\n"))
	testutil.CreateTestFile(t, filepath.Join(flags.OutputDir, NotFoundFile), []byte("stale\n"))

	summary, err := p.Run(context.Background(), []string{"abide"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.ArchivedPath == "" {
		t.Fatal("Expected previous notes to be archived")
	}
	testutil.AssertFileContent(t, summary.ArchivedPath, []byte("previous run\n"))
	testutil.AssertFileContains(t, notesPath, "\tabide\t")
	testutil.AssertFileNotExists(t, filepath.Join(flags.OutputDir, NotFoundFile))
}

func TestRun_PromptsForInput(t *testing.T) {
	server := newTestServer(t)
	outputDir := filepath.Join(t.TempDir(), "cards")
	p, flags, out := newTestProcessor(t, server, "abide, quark\n42\n"+outputDir+"\n")
	flags.OutputDir = ""

	summary, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.StartID != 42 || summary.Result.NextID != 44 {
		t.Errorf("Expected ids 42..43, got start %d next %d", summary.StartID, summary.Result.NextID)
	}
	testutil.AssertFileContains(t, filepath.Join(outputDir, NotesFile), "cam0043\tquark\t")

	for _, prompt := range []string{"Words (comma-separated): ", "Start id [1]: ", "Output directory: "} {
		if !strings.Contains(out.String(), prompt) {
			t.Errorf("Missing prompt %q", prompt)
		}
	}
}

func TestRun_NoOutputDir(t *testing.T) {
	server := newTestServer(t)
	p, flags, _ := newTestProcessor(t, server, "\n")
	flags.OutputDir = ""

	_, err := p.Run(context.Background(), []string{"abide"})
	if !errors.Is(err, ErrNoOutputDir) {
		t.Errorf("Expected ErrNoOutputDir, got %v", err)
	}
	if server.Hits(dictionary.VariantLearner, "abide") != 0 {
		t.Error("Nothing should be fetched without an output directory")
	}
}

func TestRun_InvalidStartID(t *testing.T) {
	server := newTestServer(t)
	p, _, _ := newTestProcessor(t, server, "abide\nfirst\n")

	if _, err := p.Run(context.Background(), nil); err == nil {
		t.Error("Expected error for invalid start id")
	}
}

func TestRun_NoWords(t *testing.T) {
	server := newTestServer(t)
	p, flags, _ := newTestProcessor(t, server, "")
	flags.Words = " , "

	if _, err := p.Run(context.Background(), nil); err == nil {
		t.Error("Expected error for empty word list")
	}
}

func TestRun_BatchFileAndLocalHighlight(t *testing.T) {
	server := newTestServer(t)
	p, flags, _ := newTestProcessor(t, server, "")
	flags.BatchFile = filepath.Join(t.TempDir(), "words.txt")
	flags.Highlight = cli.ProviderLocal
	testutil.CreateTestFile(t, flags.BatchFile, []byte("# words\nabide\n"))

	if _, err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	testutil.AssertFileContains(t, filepath.Join(flags.OutputDir, NotesFile),
		`1. I can't <span class="hl">abide</span> rude people.`)
}

func TestRun_MissingAPIKeySkipsEnrichment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	server := newTestServer(t)
	p, flags, out := newTestProcessor(t, server, "")
	flags.Translate = cli.ProviderOpenAI

	summary, err := p.Run(context.Background(), []string{"abide"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Result.Notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(summary.Result.Notes))
	}
	if !strings.Contains(out.String(), "OpenAI API key not found") {
		t.Errorf("Expected missing key warning:\n%s", out.String())
	}
}

func TestRun_WithPageCache(t *testing.T) {
	server := newTestServer(t)
	cachePath := filepath.Join(t.TempDir(), "pages.db")

	for i := 0; i < 2; i++ {
		p, flags, _ := newTestProcessor(t, server, "")
		flags.CachePath = cachePath
		if _, err := p.Run(context.Background(), []string{"abide"}); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
	}

	if hits := server.Hits(dictionary.VariantLearner, "abide"); hits != 1 {
		t.Errorf("Expected second run to be served from cache, got %d hits", hits)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("Cache database missing: %v", err)
	}
}
