package extractor

import "time"

// AnswerNotFound is returned for a question whose answer line is missing from the reply.
const AnswerNotFound = "Answer not found in response"

// Answer types understood by the prompt builder. Anything else is free text.
const (
	AnswerTypeBoolean     = "boolean"
	AnswerTypeInteger     = "integer"
	AnswerTypeDescription = "description"
	AnswerTypeText        = "text"
)

// Question is an active row from the question table plus the fields derived from its
// details payload.
type Question struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	IsActive     bool           `json:"isActive"`
	Details      map[string]any `json:"details"`
	QuestionText string         `json:"question_text"`
	AnswerType   string         `json:"answer_type"`
	Instructions string         `json:"instructions"`
	Answer       string         `json:"answer,omitempty"`
	AnsweredAt   *time.Time     `json:"answered_at,omitempty"`
}

// ApplyDetails fills the derived fields from Details. A missing answerType means text.
func (q *Question) ApplyDetails() {
	q.QuestionText = detailString(q.Details, "questionText")
	q.AnswerType = detailString(q.Details, "answerType")
	if q.AnswerType == "" {
		q.AnswerType = AnswerTypeText
	}
	q.Instructions = detailString(q.Details, "instructions")
}

func detailString(details map[string]any, key string) string {
	if details == nil {
		return ""
	}
	s, _ := details[key].(string)
	return s
}

// Annotate attaches answers[i] to questions[i] with a shared timestamp. The answer is
// also mirrored into the details payload so the persisted question carries it.
func Annotate(questions []Question, answers []string, at time.Time) {
	for i := range questions {
		if i >= len(answers) {
			break
		}
		questions[i].Answer = answers[i]
		ts := at
		questions[i].AnsweredAt = &ts
		if questions[i].Details != nil {
			questions[i].Details["answer"] = answers[i]
		}
	}
}
