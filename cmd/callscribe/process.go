package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

func newProcessCommand(cc *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "process <call-id>",
		Short: "Transcribe one call and answer its questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callID, err := uuid.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid call id %q: %w", args[0], err)
			}
			if err := cc.requireDatabase(); err != nil {
				return err
			}
			if err := cc.requireGemini(); err != nil {
				return err
			}
			if outputDir != "" {
				cc.cfg.OutputDir = outputDir
			}
			ctx := cmd.Context()

			db, err := store.New(ctx, cc.cfg.DatabaseURL, cc.cfg.DBSchema, cc.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			proc, hc, err := newPipeline(ctx, cc.cfg, db, cc.logger)
			if err != nil {
				return err
			}
			if hc != nil {
				defer hc.Close()
			}

			res, err := proc.Process(ctx, callID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed call %s\n", callID)
			fmt.Fprintf(out, "  transcription: %d characters\n", len(res.Document.Transcription))
			fmt.Fprintf(out, "  questions answered: %d (%d missing)\n", len(res.Document.QuestionsAndAnswers), res.AnswersMissing)
			fmt.Fprintf(out, "  results: %s\n", res.OutputFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the results file; overrides OUTPUT_DIR")
	return cmd
}
