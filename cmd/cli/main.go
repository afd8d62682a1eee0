package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/sentinels/cmd/cli/cases"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sentinels-cli",
		Long:          `Command line utilities for Sentinels, the AI assisted missing person case analysis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddGroup(cases.Group)
	rootCmd.AddCommand(cases.NewAnalyze(), cases.NewPrompt(), cases.NewNormalize())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1) //nolint:gocritic // stop is only needed for graceful shutdown.
	}

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
