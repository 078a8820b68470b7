// Package grading scores a single submitted answer against its
// reference answer. Grading is pure: it never touches session state.
package grading

import (
	"strings"

	"tutor-service/internal/models"
)

// Confidence of a verdict: exact string equality vs synonym mapping.
const (
	ConfidenceExact     = "exact"
	ConfidenceHeuristic = "heuristic"
)

// Verdict is the outcome of grading one item. Graded is false for
// open-ended qa items, which are surfaced for self-assessment instead
// of being scored; for those Correct is meaningless.
type Verdict struct {
	Graded     bool   `json:"graded"`
	Correct    bool   `json:"correct"`
	Confidence string `json:"confidence,omitempty"`
}

var truthy = map[string]bool{"true": true, "1": true, "yes": true}
var falsy = map[string]bool{"false": true, "0": true, "no": true}

// Grade scores one answer item by its question type. Inputs that match
// no recognized form are incorrect, never an error.
func Grade(item models.AnswerItem) Verdict {
	user := normalize(item.UserAnswer)
	expected := normalize(item.CorrectAnswer)

	switch item.Type {
	case models.TypeQA:
		// Open-ended answers are self-assessed against expected_points,
		// never auto-graded to a boolean.
		return Verdict{}
	case models.TypeTrueFalse:
		return Verdict{
			Graded:     true,
			Correct:    user != "" && sameBoolFamily(user, expected),
			Confidence: ConfidenceHeuristic,
		}
	case models.TypeMCQ:
		correct := user != "" && user == expected
		if correct && len(item.Options) > 0 && !inOptions(user, item.Options) {
			// Answer text that is not one of the offered options cannot
			// be the chosen option.
			correct = false
		}
		return Verdict{Graded: true, Correct: correct, Confidence: ConfidenceExact}
	default: // short
		return Verdict{Graded: true, Correct: user != "" && user == expected, Confidence: ConfidenceExact}
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sameBoolFamily(user, expected string) bool {
	if truthy[user] && truthy[expected] {
		return true
	}
	if falsy[user] && falsy[expected] {
		return true
	}
	return false
}

func inOptions(user string, options []string) bool {
	for _, opt := range options {
		if normalize(opt) == user {
			return true
		}
	}
	return false
}
