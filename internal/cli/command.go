package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lexicard/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lexicard [words...]",
		Short: "Cambridge Dictionary to Anki Flashcard Generator",
		Long: `lexicard looks words up in the Cambridge Dictionary and writes an Anki
import file with definitions, examples and pronunciation audio links.

Examples:
  lexicard                              # Prompt for words and start id
  lexicard abide run                    # Generate notes for two words
  lexicard -w "abide, run" -o ~/anki    # Comma-separated list
  lexicard --batch words.txt            # Process words from file
  lexicard --translate openai abide     # Add a translation column`,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lexicard.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", "", "Output directory (prompted for when empty)")
	cmd.Flags().StringVarP(&flags.Words, "words", "w", "", "Comma-separated list of words")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Process words from file (one word or comma list per line)")
	cmd.Flags().IntVar(&flags.StartID, "start-id", flags.StartID, "First sequential note id")
	cmd.Flags().StringVar(&flags.IDPrefix, "id-prefix", flags.IDPrefix, "Literal prefix of note ids")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List chat models available for enrichment")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log diagnostics at debug level")

	// Fetch flags
	cmd.Flags().StringVar(&flags.Site, "site", flags.Site, "Dictionary site")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout per HTTP attempt")
	cmd.Flags().IntVar(&flags.Retries, "retries", flags.Retries, "HTTP attempts per page")
	cmd.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "Words resolved concurrently")
	cmd.Flags().StringVar(&flags.CachePath, "cache", "", "SQLite page cache file (disabled when empty)")
	cmd.Flags().DurationVar(&flags.CacheTTL, "cache-ttl", flags.CacheTTL, "Maximum age of cached pages")

	// Enrichment flags
	cmd.Flags().StringVar(&flags.Highlight, "highlight", flags.Highlight, "Highlight the word in examples: none, local, openai, gemini")
	cmd.Flags().StringVar(&flags.Translate, "translate", flags.Translate, "Translate the word: none, openai, gemini")
	cmd.Flags().StringVar(&flags.TargetLang, "target-lang", flags.TargetLang, "Translation target language code")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model for enrichment")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model for enrichment")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

// viperKeys maps flag names to configuration keys
var viperKeys = map[string]string{
	"output":       "output.directory",
	"start-id":     "anki.start_id",
	"id-prefix":    "anki.id_prefix",
	"site":         "fetch.site",
	"timeout":      "fetch.timeout",
	"retries":      "fetch.retries",
	"workers":      "fetch.workers",
	"cache":        "cache.path",
	"cache-ttl":    "cache.ttl",
	"highlight":    "enrich.highlight",
	"translate":    "enrich.translate",
	"target-lang":  "enrich.target_lang",
	"openai-model": "enrich.openai_model",
	"gemini-model": "enrich.gemini_model",
}

func bindFlagsToViper(cmd *cobra.Command) {
	for flag, key := range viperKeys {
		viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

// ApplyConfig copies configured values into flags. Flags given on the
// command line take precedence over the config file and environment.
func ApplyConfig(flags *Flags) {
	flags.OutputDir = viper.GetString("output.directory")
	flags.StartID = viper.GetInt("anki.start_id")
	flags.IDPrefix = viper.GetString("anki.id_prefix")
	flags.Site = viper.GetString("fetch.site")
	flags.Timeout = viper.GetDuration("fetch.timeout")
	flags.Retries = viper.GetInt("fetch.retries")
	flags.Workers = viper.GetInt("fetch.workers")
	flags.CachePath = viper.GetString("cache.path")
	flags.CacheTTL = viper.GetDuration("cache.ttl")
	flags.Highlight = viper.GetString("enrich.highlight")
	flags.Translate = viper.GetString("enrich.translate")
	flags.TargetLang = viper.GetString("enrich.target_lang")
	flags.OpenAIModel = viper.GetString("enrich.openai_model")
	flags.GeminiModel = viper.GetString("enrich.gemini_model")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".lexicard" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lexicard")
	}

	// Environment variables
	viper.SetEnvPrefix("LEXICARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("enrich.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("enrich.gemini_key")
}
