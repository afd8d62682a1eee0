package cases

import (
	"github.com/briandowns/spinner"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/analysis"
	"github.com/myrjola/sentinels/internal/config"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/history"
	"github.com/myrjola/sentinels/internal/logging"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"time"
)

// cliSessionID scopes the analysis guard. A CLI process runs one analysis.
const cliSessionID = "cli"

// NewAnalyze creates the analyze command.
func NewAnalyze() *cobra.Command {
	var (
		flags   caseFlags
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:     "analyze",
		GroupID: Group.ID,
		Short:   "Analyze a missing person case",
		Long: `Sends the case to the configured AI provider and prints the analysis dashboard.

The provider is configured with the same environment variables as the web server.`,
		Example: `  sentinels-cli analyze --name "Jane Doe" --lastKnownLocation "Union Square, San Francisco" \
    --lastSeenDate "2025-11-20 18:30" --image ./jane.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			cfg, err := config.Load(os.LookupEnv)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			input, err := flags.caseInput(cfg.MaxUploadBytes)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), verbose)
			ctx := cmd.Context()
			var generator ai.Generator
			if generator, err = ai.NewGenerator(ctx, cfg.AI(), logger); err != nil {
				return errors.Wrap(err, "new AI generator")
			}
			service := analysis.NewService(generator, analysis.HistoryRecorder{Store: history.New()}, logger,
				cfg.AnalysisTimeout)

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, //nolint:mnd // spinner frame rate
				spinner.WithWriter(cmd.ErrOrStderr()),
				spinner.WithSuffix(" Analyzing geospatial data..."),
			)
			s.Start()
			record, err := service.Analyze(ctx, cliSessionID, input)
			s.Stop()
			if err != nil {
				return errors.Wrap(err, "analyze case")
			}

			return writeRecord(cmd.OutOrStdout(), output, record)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the analysis progress")
	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
