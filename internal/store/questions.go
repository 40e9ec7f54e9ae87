package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MikeSquared-Agency/callscribe/internal/extractor"
)

// ActiveQuestions returns every active question ordered by id.
func (s *Store) ActiveQuestions(ctx context.Context) ([]extractor.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, label, "isActive", details
		FROM `+s.table("question")+`
		WHERE "isActive" = true
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return s.scanQuestions(rows)
}

// CampaignQuestions returns the active questions linked to campaignID through
// campaign_question, ordered by id.
func (s *Store) CampaignQuestions(ctx context.Context, campaignID string) ([]extractor.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT q.id::text, q.label, q."isActive", q.details
		FROM `+s.table("question")+` q
		JOIN `+s.table("campaign_question")+` cq ON q.id = cq."questionId"
		WHERE q."isActive" = true AND cq."campaignId"::text = $1
		ORDER BY q.id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query campaign questions: %w", err)
	}
	return s.scanQuestions(rows)
}

// questionRows is the subset of pgx.Rows read by scanQuestions.
type questionRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// scanQuestions skips rows whose details cannot be decoded so one bad row does not hide
// the rest.
func (s *Store) scanQuestions(rows questionRows) ([]extractor.Question, error) {
	defer rows.Close()

	var out []extractor.Question
	for rows.Next() {
		var (
			id, label string
			isActive  bool
			details   []byte
		)
		if err := rows.Scan(&id, &label, &isActive, &details); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q, err := decodeQuestion(id, label, isActive, details)
		if err != nil {
			s.logger.Warn("skipping question", "question_id", id, "error", err)
			continue
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func decodeQuestion(id, label string, isActive bool, details []byte) (extractor.Question, error) {
	q := extractor.Question{ID: id, Label: label, IsActive: isActive}
	if len(details) > 0 && string(details) != "null" {
		if err := json.Unmarshal(details, &q.Details); err != nil {
			return q, fmt.Errorf("question %s details: %w", id, err)
		}
	}
	q.ApplyDetails()
	return q, nil
}
