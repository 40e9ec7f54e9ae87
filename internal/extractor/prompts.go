package extractor

import (
	"fmt"
	"strings"
)

// TranscriptionPrompt is sent alongside the recording bytes.
const TranscriptionPrompt = "Please transcribe the following audio file. Provide a clear, accurate transcription of the conversation."

const answerPromptTemplate = `Based on the following call transcription, please answer the questions below.
Provide clear, concise answers based on the information available in the transcription.
If information is not available in the transcription, please state "Information not available in the call."

TRANSCRIPTION:
%s

QUESTIONS TO ANSWER:
%s
ANSWER CONSTRAINTS:
%s

IMPORTANT: Follow the answer type constraints exactly. For boolean questions, answer only 'true' or 'false'. For integer questions, answer only the number. For description questions, provide a summary.

Please provide your answers in the following format:
Answer 1: [your answer]
Answer 2: [your answer]
etc.`

// BuildAnswerPrompt renders the combined question-answering prompt for a transcript.
func BuildAnswerPrompt(transcript string, questions []Question) string {
	var qs strings.Builder
	var constraints []string
	for i, q := range questions {
		n := i + 1
		fmt.Fprintf(&qs, "%d. %s\n", n, q.QuestionText)
		constraints = append(constraints, fmt.Sprintf("Question %d: %s", n, answerConstraint(q.AnswerType)))
		if q.Instructions != "" {
			constraints = append(constraints, fmt.Sprintf("Question %d: %s", n, q.Instructions))
		}
	}
	return fmt.Sprintf(answerPromptTemplate, transcript, qs.String(), strings.Join(constraints, "\n"))
}

func answerConstraint(answerType string) string {
	switch answerType {
	case AnswerTypeBoolean:
		return "Answer must be ONLY 'true' or 'false'"
	case AnswerTypeInteger:
		return "Answer must be ONLY a number (no units, no text)"
	case AnswerTypeDescription:
		return "Answer must be a descriptive summary"
	default:
		return "Answer should be clear and concise"
	}
}
