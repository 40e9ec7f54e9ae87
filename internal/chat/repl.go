package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// REPL drives a Session from a line reader.
type REPL struct {
	session   *Session
	in        LineReader
	out       io.Writer
	outputDir string
	logger    *slog.Logger
}

func NewREPL(session *Session, in LineReader, out io.Writer, outputDir string, logger *slog.Logger) *REPL {
	return &REPL{session: session, in: in, out: out, outputDir: outputDir, logger: logger}
}

// Run loops until quit, exit, bye or end of input, then saves the conversation.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Gemini Chat")
	fmt.Fprintln(r.out, strings.Repeat("=", 50))
	fmt.Fprintln(r.out, "Type 'quit', 'exit', or 'bye' to end the conversation")
	fmt.Fprintln(r.out, "Type 'clear' to clear the conversation history")
	fmt.Fprintln(r.out, strings.Repeat("=", 50))

	loopErr := r.loop(ctx)

	path, err := r.session.Save(r.outputDir)
	if err != nil {
		fmt.Fprintf(r.out, "Error saving conversation: %v\n", err)
		r.logger.Error("failed to save conversation", "error", err)
	} else if path != "" {
		fmt.Fprintf(r.out, "Conversation saved to: %s\n", path)
	}
	return loopErr
}

func (r *REPL) loop(ctx context.Context) error {
	for {
		line, err := r.in.ReadLine("You: ")
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input := strings.TrimSpace(line)
		switch strings.ToLower(input) {
		case "quit", "exit", "bye":
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case "clear":
			r.session.Clear()
			fmt.Fprintln(r.out, "Conversation history cleared!")
			continue
		case "":
			continue
		}

		reply, err := r.session.Send(ctx, input)
		if err != nil {
			r.logger.Warn("chat request failed", "error", err)
			fmt.Fprintln(r.out, "Gemini: Sorry, I couldn't process your request. Please try again.")
			continue
		}
		fmt.Fprintf(r.out, "Gemini: %s\n\n", reply)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
