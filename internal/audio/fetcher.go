package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

const defaultTimeout = 30 * time.Second

// ErrEmptyAudio is returned when the recording URL answers with an empty body.
var ErrEmptyAudio = errors.New("empty audio body")

// Recording is a downloaded call recording.
type Recording struct {
	Data        []byte
	ContentType string
}

type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch downloads the recording at url. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Recording, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("download recording: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	f.logger.Info("recording downloaded",
		"size", humanize.Bytes(uint64(len(data))),
		"content_type", resp.Header.Get("Content-Type"),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Recording{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
