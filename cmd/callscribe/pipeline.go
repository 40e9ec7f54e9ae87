package main

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/callscribe/internal/audio"
	"github.com/MikeSquared-Agency/callscribe/internal/config"
	"github.com/MikeSquared-Agency/callscribe/internal/extractor"
	"github.com/MikeSquared-Agency/callscribe/internal/gemini"
	"github.com/MikeSquared-Agency/callscribe/internal/hermes"
	"github.com/MikeSquared-Agency/callscribe/internal/processor"
	"github.com/MikeSquared-Agency/callscribe/internal/slack"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

// newPipeline wires a processor over db. NATS and Slack are attached when configured; the
// returned hermes client is nil otherwise and must be closed by the caller.
func newPipeline(ctx context.Context, cfg config.Config, db *store.Store, logger *slog.Logger) (*processor.Processor, *hermes.Client, error) {
	llm, err := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("gemini client ready", "model", llm.Model())

	deps := processor.Deps{
		Store:       db,
		Fetcher:     audio.NewFetcher(cfg.AudioTimeout, logger),
		Transcriber: llm,
		Answerer:    extractor.New(llm, logger),
	}

	var hc *hermes.Client
	if cfg.NatsURL != "" {
		hc, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return nil, nil, err
		}
		deps.Publisher = hc
		logger.Info("NATS connected", "url", cfg.NatsURL)
	}

	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		deps.Notifier = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger)
		logger.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	proc := processor.New(deps, processor.Options{
		MimeType:          cfg.AudioMimeType,
		OutputDir:         cfg.OutputDir,
		CampaignQuestions: cfg.CampaignQuestions,
		WriteCallAnalysis: cfg.WriteCallAnalysis,
	}, logger)
	return proc, hc, nil
}
