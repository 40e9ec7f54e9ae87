package extractor

import (
	"context"
	"fmt"
	"log/slog"
)

// Model is the part of the generative-answer client the extractor needs.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Extractor struct {
	llm       Model
	logger    *slog.Logger
	parseOpts []ParseOption
}

func New(llm Model, logger *slog.Logger, opts ...ParseOption) *Extractor {
	return &Extractor{llm: llm, logger: logger, parseOpts: opts}
}

// Answer asks the model every question about the transcript in a single prompt and
// returns one answer per question, positionally aligned.
func (e *Extractor) Answer(ctx context.Context, transcript string, questions []Question) ([]string, error) {
	if len(questions) == 0 {
		return []string{}, nil
	}
	prompt := BuildAnswerPrompt(transcript, questions)

	e.logger.Info("answering questions",
		"questions", len(questions),
		"transcript_len", len(transcript),
	)
	e.logger.Debug("answer prompt", "prompt", prompt)

	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm answers: %w", err)
	}

	answers := ParseAnswers(raw, len(questions), e.parseOpts...)

	missing := 0
	for i, a := range answers {
		if a == AnswerNotFound {
			missing++
		}
		e.logger.Debug("parsed answer", "index", i+1, "answer", a)
	}
	if missing > 0 {
		e.logger.Warn("answers missing from model reply",
			"missing", missing,
			"raw_snippet", snippet(raw, 200),
		)
	}

	e.logger.Info("answers parsed", "questions", len(questions), "missing", missing)
	return answers, nil
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
