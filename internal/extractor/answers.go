package extractor

import (
	"strconv"
	"strings"
)

// ParseOption adjusts how ParseAnswers scans the reply.
type ParseOption func(*parseConfig)

type parseConfig struct {
	exclusive bool
}

// Exclusive marks a line as consumed once it has been matched to an index, so later
// indices cannot reuse it.
func Exclusive() ParseOption {
	return func(c *parseConfig) { c.exclusive = true }
}

// answerPrefixes are the line markers accepted for index i, in precedence order.
var answerPrefixes = []func(n string) string{
	func(n string) string { return "Answer " + n + ":" },
	func(n string) string { return n + "." },
	func(n string) string { return n + ":" },
	func(n string) string { return "Answer " + n },
	func(n string) string { return "Q" + n },
	func(n string) string { return "Question " + n },
}

// ParseAnswers recovers expectedCount answers from a free-text model reply. The result
// always has exactly expectedCount elements; indices with no matching line get
// AnswerNotFound.
func ParseAnswers(rawText string, expectedCount int, opts ...ParseOption) []string {
	if expectedCount <= 0 {
		return []string{}
	}
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	lines := strings.Split(rawText, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	consumed := make([]bool, len(lines))

	answers := make([]string, 0, expectedCount)
	for i := 1; i <= expectedCount; i++ {
		n := strconv.Itoa(i)
		answer := AnswerNotFound
		for j, line := range lines {
			if consumed[j] {
				continue
			}
			prefix, ok := matchPrefix(line, n)
			if !ok {
				continue
			}
			answer = cleanAnswer(payload(line, n, prefix))
			if cfg.exclusive {
				consumed[j] = true
			}
			break
		}
		answers = append(answers, answer)
	}
	return answers
}

func matchPrefix(line, n string) (string, bool) {
	for _, form := range answerPrefixes {
		if p := form(n); strings.HasPrefix(line, p) {
			return p, true
		}
	}
	return "", false
}

// payload picks the answer text out of a matched line.
func payload(line, n, prefix string) string {
	if _, after, ok := strings.Cut(line, ":"); ok {
		return after
	}
	if rest, ok := strings.CutPrefix(line, n+"."); ok {
		// "1. yes" is a numbered answer; "1.5 hours" is not.
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return rest
		}
		return line
	}
	if _, after, ok := strings.Cut(line, "."); ok {
		if cleanAnswer(after) != "" {
			return after
		}
		return strings.TrimPrefix(line, prefix)
	}
	return line
}

func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".,-")
	return strings.TrimSpace(s)
}
