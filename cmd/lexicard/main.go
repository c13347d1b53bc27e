package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/lexicard/internal/cli"
	"codeberg.org/snonux/lexicard/internal/models"
	"codeberg.org/snonux/lexicard/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cli.ApplyConfig(flags)
	if err := flags.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if flags.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		if err := lister.EnableGemini(cmd.Context(), cli.GetGeminiKey()); err != nil {
			return err
		}
		return lister.ListAvailableModels(cmd.Context())
	}

	proc := processor.NewProcessor(flags, logger)
	summary, err := proc.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	if summary.NotesPath != "" {
		fmt.Printf("\nDone! Import %s into Anki.\n", summary.NotesPath)
	}
	return nil
}
