package cases

import (
	"fmt"
	"github.com/myrjola/sentinels/internal/config"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/intake"
	"github.com/spf13/cobra"
	"os"
	"time"
)

// NewPrompt creates the prompt command.
func NewPrompt() *cobra.Command {
	var flags caseFlags

	cmd := &cobra.Command{
		Use:     "prompt",
		GroupID: Group.ID,
		Short:   "Print the analysis prompt",
		Long:    `Prints the prompt that analyze would send to the AI provider without calling it.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(os.LookupEnv)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			input, err := flags.caseInput(cfg.MaxUploadBytes)
			if err != nil {
				return err
			}
			if err = input.Validate(); err != nil {
				return err
			}

			req, err := intake.Build(input, time.Now())
			if err != nil {
				return errors.Wrap(err, "build request")
			}

			out := cmd.OutOrStdout()
			if _, err = fmt.Fprintln(out, req.Prompt); err != nil {
				return errors.Wrap(err, "write prompt")
			}
			if req.Image != nil {
				_, err = fmt.Fprintf(out, "\n[attached image: %s, %s, %d base64 bytes]\n",
					req.Image.Filename, req.Image.MIMEType, len(req.Image.Data))
			}
			return errors.Wrap(err, "write image summary")
		},
	}

	flags.register(cmd)
	return cmd
}
