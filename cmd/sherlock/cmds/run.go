package cmds

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/sherlock/pkg/batch"
	"github.com/go-go-golems/sherlock/pkg/runloop"
)

// NewRunCommand answers a single research question.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [question]",
		Short: "Run the research agent on one question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFromViper()
			if err != nil {
				return err
			}
			registry, err := settings.buildRegistry()
			if err != nil {
				return err
			}

			loop := settings.buildLoop(registry)
			result := loop.Run(cmd.Context(), args[0])

			log.Info().
				Str("termination", result.Termination.String()).
				Msg("run complete")

			return writeResults(cmd, []*runloop.Result{result})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the JSONL result record to this file instead of stdout")
	return cmd
}

func writeResults(cmd *cobra.Command, results []*runloop.Result) error {
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create output %s", path)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return batch.WriteResults(out, results)
}
