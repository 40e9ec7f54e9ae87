package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/callscribe/internal/config"
)

// annotationInteractive marks commands that own the terminal; their logs go to stderr.
const annotationInteractive = "callscribe/interactive"

type commandContext struct {
	envFile  string
	logLevel string

	cfg    config.Config
	logger *slog.Logger
}

func (c *commandContext) load(cmd *cobra.Command) {
	config.LoadDotEnv(c.envFile)
	c.cfg = config.Load()
	if c.logLevel != "" {
		c.cfg.LogLevel = c.logLevel
	}

	w := cmd.OutOrStdout()
	if _, ok := cmd.Annotations[annotationInteractive]; ok {
		w = os.Stderr
	}
	c.logger = setupLogging(strings.ToLower(c.cfg.LogLevel), w)
}

func (c *commandContext) requireDatabase() error {
	if c.cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL (or DB_CONNECTION_STRING) is required")
	}
	return nil
}

func (c *commandContext) requireGemini() error {
	if c.cfg.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "callscribe",
		Short:         "Call transcription and question answering over Postgres and Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cc.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cc.envFile, "env-file", ".env", "Environment file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&cc.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(newSQLCommand(cc))
	rootCmd.AddCommand(newChatCommand(cc))
	rootCmd.AddCommand(newProcessCommand(cc))
	rootCmd.AddCommand(newServeCommand(cc))

	return rootCmd
}
