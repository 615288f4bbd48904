package cmds

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/sherlock/pkg/batch"
	"github.com/go-go-golems/sherlock/pkg/runloop"
)

// NewBatchCommand runs the agent over a file of questions with a
// bounded worker pool. The file holds either one plain question per
// line or one JSON object per line with "question" and optional
// "answer" fields.
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [questions-file]",
		Short: "Run the research agent over a file of questions",
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

			tasks, err := readTasks(args[0])
			if err != nil {
				return err
			}
			log.Info().Int("tasks", len(tasks)).Int("workers", settings.Workers).
				Msg("starting batch")

			pool := batch.NewPool(func() *runloop.Loop {
				return settings.buildLoop(registry)
			}, settings.Workers)

			results := pool.Run(cmd.Context(), tasks)
			return writeResults(cmd, results)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write JSONL result records to this file instead of stdout")
	return cmd
}

func readTasks(path string) ([]batch.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open questions file %s", path)
	}
	defer func() { _ = f.Close() }()

	var tasks []batch.Task
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var task batch.Task
			if err := json.Unmarshal([]byte(line), &task); err != nil {
				return nil, errors.Wrapf(err, "parse task line %q", line)
			}
			tasks = append(tasks, task)
			continue
		}
		tasks = append(tasks, batch.Task{Question: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read questions file")
	}
	return tasks, nil
}
