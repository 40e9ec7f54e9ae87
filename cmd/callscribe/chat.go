package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/callscribe/internal/chat"
	"github.com/MikeSquared-Agency/callscribe/internal/console"
	"github.com/MikeSquared-Agency/callscribe/internal/gemini"
)

func newChatCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "chat",
		Short:       "Interactive chat with Gemini",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cc.requireGemini(); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			llm, err := gemini.NewClient(gemini.Config{
				APIKey:  cc.cfg.GeminiAPIKey,
				Model:   cc.cfg.ChatModel,
				Timeout: cc.cfg.GeminiTimeout,
			})
			if err != nil {
				return err
			}

			session := chat.NewSession(llm)
			fmt.Fprintln(out, "Testing connection to Gemini API...")
			if err := session.Ping(ctx); err != nil {
				return fmt.Errorf("connect to gemini: %w", err)
			}
			fmt.Fprintln(out, "Connection successful!")

			con, err := console.New(cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			defer con.Close()

			return chat.NewREPL(session, con, con.Out(), cc.cfg.OutputDir, cc.logger).Run(ctx)
		},
	}
}
