package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/callscribe/internal/extractor"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

// FileTimeLayout is the timestamp embedded in result and conversation file names.
const FileTimeLayout = "20060102_150405"

// Document is the per-run JSON file written next to the database update.
type Document struct {
	CallID              string               `json:"call_id"`
	CallData            *store.Call          `json:"call_data"`
	Transcription       string               `json:"transcription"`
	QuestionsAndAnswers []extractor.Question `json:"questions_and_answers"`
	ProcessedAt         time.Time            `json:"processed_at"`
}

// FileName returns transcription_results_<id>_<YYYYMMDD_HHMMSS>.json.
func FileName(callID string, at time.Time) string {
	return fmt.Sprintf("transcription_results_%s_%s.json", callID, at.Format(FileTimeLayout))
}

// Write stores doc under dir and returns the path written.
func Write(dir string, doc *Document) (string, error) {
	if doc.QuestionsAndAnswers == nil {
		doc.QuestionsAndAnswers = []extractor.Question{}
	}
	return WriteJSON(filepath.Join(dir, FileName(doc.CallID, doc.ProcessedAt)), doc)
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
