package hermes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SubjectCallRequested = "callscribe.call.requested"
	SubjectCallProcessed = "callscribe.call.processed"
	SubjectCallFailed    = "callscribe.call.failed"
)

// CallRequest asks the service to run the pipeline for one call. The field name matches
// the HTTP trigger body.
type CallRequest struct {
	CallLogsID string `json:"call_logsId"`
}

// CallProcessed is published after a run has been persisted.
type CallProcessed struct {
	CallID            string    `json:"call_id"`
	TranscriptionLen  int       `json:"transcription_len"`
	QuestionsAnswered int       `json:"questions_answered"`
	AnswersMissing    int       `json:"answers_missing"`
	OutputFile        string    `json:"output_file"`
	ProcessedAt       time.Time `json:"processed_at"`
}

// CallFailed is published when a run aborts.
type CallFailed struct {
	CallID   string    `json:"call_id"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// ParseCallRequest decodes a call request payload and validates its id.
func ParseCallRequest(data []byte) (uuid.UUID, error) {
	var req CallRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return uuid.Nil, fmt.Errorf("parse call request: %w", err)
	}
	id := strings.TrimSpace(req.CallLogsID)
	if id == "" {
		return uuid.Nil, errors.New("call request: call_logsId is required")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("call request: invalid call_logsId %q: %w", id, err)
	}
	return parsed, nil
}
