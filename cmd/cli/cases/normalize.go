package cases

import (
	"encoding/json"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/normalize"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
)

// NewNormalize creates the normalize command.
func NewNormalize() *cobra.Command {
	var (
		groundingPath string
		output        string
	)

	cmd := &cobra.Command{
		Use:     "normalize [file|-]",
		GroupID: Group.ID,
		Short:   "Normalize a saved AI reply",
		Long: `Reads a raw AI reply from file, or standard input when the file is "-" or omitted, and prints the
normalized analysis result. Grounding metadata saved as JSON can be supplied with --grounding.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == outputText {
				output = outputJSON
			}
			if err := checkOutput(output); err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			reply := ai.Reply{Text: string(text)}
			if groundingPath != "" {
				var grounding []byte
				if grounding, err = os.ReadFile(groundingPath); err != nil {
					return errors.Wrap(err, "read grounding", slog.String("path", groundingPath))
				}
				if !json.Valid(grounding) {
					return errors.New("grounding is not valid JSON", slog.String("path", groundingPath))
				}
				reply.Grounding = grounding
			}

			logger := newLogger(cmd.ErrOrStderr(), false)
			result := normalize.New(logger).Normalize(cmd.Context(), reply)
			return encode(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().StringVar(&groundingPath, "grounding", "", "path to the provider's grounding metadata JSON")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or yaml")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return b, errors.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(path)
	return b, errors.Wrap(err, "read reply", slog.String("path", path))
}
