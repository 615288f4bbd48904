package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/sherlock/cmd/sherlock/cmds"
)

var rootCmd = &cobra.Command{
	Use:   "sherlock",
	Short: "sherlock is an autonomous deep-research agent",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		return setupLogging(viper.GetString("log-level"))
	},
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("model", "", "Model name for chat completions")
	flags.String("base-url", "", "OpenAI-compatible API base URL")
	flags.String("api-key", "", "API key for the model endpoint")
	flags.String("profile", "", "Path to a yaml agent profile")
	flags.String("code-tool", "python", "Name fragment identifying the code-execution tool")
	flags.Int("max-calls", 30, "Maximum tool rounds per run")
	flags.Int("working-token-budget", 60000, "Soft token budget triggering truncation")
	flags.Int("hard-token-ceiling", 100000, "Hard token ceiling forcing a final answer")
	flags.Duration("wall-clock-limit", 150*time.Minute, "Per-run wall clock ceiling")
	flags.Int("max-retries", 3, "Model call retry attempts")
	flags.Duration("request-timeout", 120*time.Second, "Per-request timeout for model calls")
	flags.Int("workers", 4, "Parallel runs in batch mode")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	viper.SetEnvPrefix("SHERLOCK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(cmds.NewRunCommand())
	rootCmd.AddCommand(cmds.NewBatchCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
