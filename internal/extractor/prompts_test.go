package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnswerPrompt(t *testing.T) {
	questions := []Question{
		{QuestionText: "Did the customer agree to the order?", AnswerType: AnswerTypeBoolean},
		{QuestionText: "How many units were ordered?", AnswerType: AnswerTypeInteger, Instructions: "Count cartons, not pieces."},
		{QuestionText: "Summarise the complaint.", AnswerType: AnswerTypeDescription},
		{QuestionText: "Which city was mentioned?", AnswerType: AnswerTypeText},
	}

	prompt := BuildAnswerPrompt("Agent: hello\nCustomer: hi", questions)

	checks := []string{
		"TRANSCRIPTION:\nAgent: hello\nCustomer: hi",
		"1. Did the customer agree to the order?\n",
		"2. How many units were ordered?\n",
		"3. Summarise the complaint.\n",
		"4. Which city was mentioned?\n",
		"Question 1: Answer must be ONLY 'true' or 'false'",
		"Question 2: Answer must be ONLY a number (no units, no text)",
		"Question 2: Count cartons, not pieces.",
		"Question 3: Answer must be a descriptive summary",
		"Question 4: Answer should be clear and concise",
		"Answer 1: [your answer]",
	}
	for _, c := range checks {
		assert.Contains(t, prompt, c)
	}
	assert.Equal(t, 1, strings.Count(prompt, "Question 2: Count cartons"))
}

func TestBuildAnswerPrompt_UnknownTypeIsFreeText(t *testing.T) {
	prompt := BuildAnswerPrompt("t", []Question{{QuestionText: "q", AnswerType: "rating"}})
	assert.Contains(t, prompt, "Question 1: Answer should be clear and concise")
}

func TestQuestion_ApplyDetails(t *testing.T) {
	q := Question{Details: map[string]any{
		"questionText": "Was a discount offered?",
		"answerType":   "boolean",
		"instructions": "Only count explicit offers.",
	}}
	q.ApplyDetails()

	assert.Equal(t, "Was a discount offered?", q.QuestionText)
	assert.Equal(t, AnswerTypeBoolean, q.AnswerType)
	assert.Equal(t, "Only count explicit offers.", q.Instructions)

	empty := Question{}
	empty.ApplyDetails()
	assert.Equal(t, AnswerTypeText, empty.AnswerType)
	assert.Empty(t, empty.QuestionText)
}
