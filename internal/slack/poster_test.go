package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/callscribe/internal/extractor"
	"github.com/MikeSquared-Agency/callscribe/internal/results"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func sampleDocument() *results.Document {
	duration := int64(342)
	return &results.Document{
		CallID: "0b8f3c1e-0000-0000-0000-000000000001",
		CallData: &store.Call{
			AgentName:    strPtr("Asha"),
			CampaignName: strPtr("Spring Renewals"),
			Duration:     &duration,
		},
		Transcription: strings.Repeat("a", 1500),
		QuestionsAndAnswers: []extractor.Question{
			{ID: "1", QuestionText: "Did the customer renew?", Answer: "true"},
			{ID: "2", Label: "units", Answer: extractor.AnswerNotFound},
			{ID: "3"},
		},
		ProcessedAt: time.Now(),
	}
}

func TestFormatCallSummary(t *testing.T) {
	msg := formatCallSummary(sampleDocument())

	checks := []string{
		"0b8f3c1e-0000-0000-0000-000000000001",
		"agent Asha",
		"campaign Spring Renewals",
		"5m42s",
		"1,500 characters",
		"Answers: 3",
		"1. Did the customer renew?\n   → true",
		"2. units\n   → _Answer not found in response_",
		"3. question 3\n   → _not answered_",
	}
	for _, check := range checks {
		assert.Contains(t, msg, check)
	}
}

func TestFormatCallSummary_NoQuestions(t *testing.T) {
	doc := &results.Document{CallID: "c-1", Transcription: "hi"}

	msg := formatCallSummary(doc)

	assert.Contains(t, msg, "transcription only")
	assert.NotContains(t, msg, "Details")
}

func TestPostCallSummary_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "C123", payload["channel"])
		assert.Contains(t, payload["text"], "0b8f3c1e-0000-0000-0000-000000000001")

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.PostCallSummary(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "1234567890.123456", ts)
}

func TestPostCallSummary_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	_, err := p.PostCallSummary(context.Background(), &results.Document{CallID: "c-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
