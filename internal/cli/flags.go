package cli

import (
	"fmt"
	"time"
)

// Enrichment provider names
const (
	ProviderNone   = "none"
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	OutputDir  string
	Words      string
	BatchFile  string
	StartID    int
	IDPrefix   string
	ListModels bool
	Verbose    bool

	// Fetch flags
	Site      string
	Timeout   time.Duration
	Retries   int
	Workers   int
	CachePath string
	CacheTTL  time.Duration

	// Enrichment flags
	Highlight   string
	Translate   string
	TargetLang  string
	OpenAIModel string
	GeminiModel string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		StartID:     1,
		IDPrefix:    "cam",
		Site:        "https://dictionary.cambridge.org",
		Timeout:     15 * time.Second,
		Retries:     5,
		Workers:     1,
		CacheTTL:    7 * 24 * time.Hour,
		Highlight:   ProviderNone,
		Translate:   ProviderNone,
		TargetLang:  "vi",
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
	}
}

// Validate checks flag combinations that cobra cannot
func (f *Flags) Validate() error {
	switch f.Highlight {
	case ProviderNone, ProviderLocal, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("invalid --highlight %q: must be none, local, openai or gemini", f.Highlight)
	}

	switch f.Translate {
	case ProviderNone, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("invalid --translate %q: must be none, openai or gemini", f.Translate)
	}

	if f.StartID < 0 {
		return fmt.Errorf("invalid --start-id %d: must not be negative", f.StartID)
	}
	if f.Retries < 1 {
		return fmt.Errorf("invalid --retries %d: need at least one attempt", f.Retries)
	}
	if f.Workers < 1 {
		return fmt.Errorf("invalid --workers %d: need at least one worker", f.Workers)
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("invalid --timeout %s: must be positive", f.Timeout)
	}
	return nil
}
