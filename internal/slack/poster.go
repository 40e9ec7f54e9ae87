package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MikeSquared-Agency/callscribe/internal/extractor"
	"github.com/MikeSquared-Agency/callscribe/internal/results"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostCallSummary posts the answers of a processed call and returns the message ts.
func (p *Poster) PostCallSummary(ctx context.Context, doc *results.Document) (string, error) {
	text := formatCallSummary(doc)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted call summary to slack", "ts", slackResp.TS, "call_id", doc.CallID)
	return slackResp.TS, nil
}

func formatCallSummary(doc *results.Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Call:* %s\n", doc.CallID)
	if c := doc.CallData; c != nil {
		var parts []string
		if c.AgentName != nil && *c.AgentName != "" {
			parts = append(parts, "agent "+*c.AgentName)
		}
		if c.CampaignName != nil && *c.CampaignName != "" {
			parts = append(parts, "campaign "+*c.CampaignName)
		}
		if c.Duration != nil {
			parts = append(parts, (time.Duration(*c.Duration) * time.Second).String())
		}
		if len(parts) > 0 {
			fmt.Fprintf(&sb, "*Details:* %s\n", strings.Join(parts, " | "))
		}
	}
	fmt.Fprintf(&sb, "*Transcript:* %s characters\n\n", humanize.Comma(int64(len([]rune(doc.Transcription)))))

	if len(doc.QuestionsAndAnswers) == 0 {
		sb.WriteString("_No questions configured; transcription only._")
		return sb.String()
	}

	fmt.Fprintf(&sb, "*Answers: %d*\n", len(doc.QuestionsAndAnswers))
	for i, q := range doc.QuestionsAndAnswers {
		answer := q.Answer
		switch answer {
		case "":
			answer = "_not answered_"
		case extractor.AnswerNotFound:
			answer = "_" + answer + "_"
		}
		fmt.Fprintf(&sb, "%d. %s\n   → %s\n", i+1, questionLabel(q), answer)
	}
	return sb.String()
}

func questionLabel(q extractor.Question) string {
	if q.QuestionText != "" {
		return q.QuestionText
	}
	if q.Label != "" {
		return q.Label
	}
	return "question " + q.ID
}
