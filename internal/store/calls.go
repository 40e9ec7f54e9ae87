package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrCallNotFound is returned when no call_logs row has the requested id.
var ErrCallNotFound = errors.New("call not found")

// Call is the subset of a call_logs row the pipeline reads.
type Call struct {
	ID             string  `json:"id"`
	RecordingURL   *string `json:"recording_url"`
	CallID         *string `json:"call_id"`
	CallerIDNumber *string `json:"caller_id_number"`
	CallToNumber   *string `json:"call_to_number"`
	StartDate      *string `json:"start_date"`
	StartTime      *string `json:"start_time"`
	Duration       *int64  `json:"duration"`
	AgentName      *string `json:"agent_name"`
	CampaignName   *string `json:"campaign_name"`
	CampaignID     *string `json:"campaignId"`
}

// Recording returns the recording URL, or "" when the column is null.
func (c *Call) Recording() string {
	if c.RecordingURL == nil {
		return ""
	}
	return *c.RecordingURL
}

// Campaign returns the campaign id, or "" when the column is null.
func (c *Call) Campaign() string {
	if c.CampaignID == nil {
		return ""
	}
	return *c.CampaignID
}

// TranscriptionRecord is stored in call_logs."transcriptionJSON".
type TranscriptionRecord struct {
	Transcription     string    `json:"transcription"`
	TranscribedAt     time.Time `json:"transcribed_at"`
	QuestionsAnswered int       `json:"questions_answered"`
}

// CallAnalysis is stored in call_logs."callAnalysis". Answers are keyed by question id.
type CallAnalysis struct {
	Transcription string            `json:"transcription"`
	Answers       map[string]string `json:"answers"`
	ProcessedAt   time.Time         `json:"processed_at"`
}

func (s *Store) GetCall(ctx context.Context, id uuid.UUID) (*Call, error) {
	var c Call
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, recording_url, call_id::text, caller_id_number::text, call_to_number::text,
		       start_date::text, start_time::text, duration::bigint, agent_name, campaign_name,
		       "campaignId"::text
		FROM `+s.table("call_logs")+`
		WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.RecordingURL, &c.CallID, &c.CallerIDNumber, &c.CallToNumber,
		&c.StartDate, &c.StartTime, &c.Duration, &c.AgentName, &c.CampaignName,
		&c.CampaignID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCallNotFound
		}
		return nil, fmt.Errorf("get call %s: %w", id, err)
	}
	return &c, nil
}

// SaveTranscription writes the transcription record and bumps the attempt counter in one
// transaction. When analysis is non-nil the callAnalysis column is written as well.
func (s *Store) SaveTranscription(ctx context.Context, id uuid.UUID, rec TranscriptionRecord, analysis *CallAnalysis) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal transcription: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE `+s.table("call_logs")+`
		SET "transcriptionJSON" = $1, "transcribeAttempt" = COALESCE("transcribeAttempt", 0) + 1
		WHERE id = $2`,
		string(recJSON), id,
	)
	if err != nil {
		return fmt.Errorf("update transcription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCallNotFound
	}

	if analysis != nil {
		analysisJSON, err := json.Marshal(analysis)
		if err != nil {
			return fmt.Errorf("marshal call analysis: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE `+s.table("call_logs")+`
			SET "callAnalysis" = $1
			WHERE id = $2`,
			string(analysisJSON), id,
		); err != nil {
			return fmt.Errorf("update call analysis: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
