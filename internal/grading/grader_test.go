package grading

import (
	"testing"

	"tutor-service/internal/models"
)

func TestGradeMCQ(t *testing.T) {
	testCases := []struct {
		name    string
		user    string
		correct string
		options []string
		want    bool
	}{
		{"exact match", "Paris", "Paris", nil, true},
		{"case and whitespace normalized", "  pArIs ", "paris", nil, true},
		{"wrong option", "London", "Paris", nil, false},
		{"empty answer", "", "Paris", nil, false},
		{"match within options", "paris", "Paris", []string{"Paris", "London", "Rome", "Berlin"}, true},
		{"answer not among options", "paris", "paris", []string{"London", "Rome", "Berlin", "Madrid"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Grade(models.AnswerItem{
				Question:      "capital of France?",
				UserAnswer:    tc.user,
				CorrectAnswer: tc.correct,
				Type:          models.TypeMCQ,
				Options:       tc.options,
			})
			if !v.Graded {
				t.Fatal("mcq verdict should be graded")
			}
			if v.Correct != tc.want {
				t.Errorf("Expected correct=%v, got %v", tc.want, v.Correct)
			}
			if v.Confidence != ConfidenceExact {
				t.Errorf("Expected exact confidence, got %q", v.Confidence)
			}
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	testCases := []struct {
		name    string
		user    string
		correct string
		want    bool
	}{
		{"literal true", "true", "true", true},
		{"yes maps to true", "Yes", "true", true},
		{"one maps to true", "1", "yes", true},
		{"no maps to false", "No", "false", true},
		{"zero maps to false", "0", "FALSE", true},
		{"families differ", "yes", "false", false},
		{"unrecognized input is incorrect", "maybe", "true", false},
		{"unrecognized expected is incorrect", "true", "certainly", false},
		{"empty answer", "", "false", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Grade(models.AnswerItem{
				Question:      "the sky is blue",
				UserAnswer:    tc.user,
				CorrectAnswer: tc.correct,
				Type:          models.TypeTrueFalse,
			})
			if !v.Graded {
				t.Fatal("true_false verdict should be graded")
			}
			if v.Correct != tc.want {
				t.Errorf("Expected correct=%v, got %v", tc.want, v.Correct)
			}
			if v.Confidence != ConfidenceHeuristic {
				t.Errorf("Expected heuristic confidence, got %q", v.Confidence)
			}
		})
	}
}

func TestGradeShort(t *testing.T) {
	testCases := []struct {
		name    string
		user    string
		correct string
		want    bool
	}{
		{"exact", "stack", "stack", true},
		{"normalized", " Stack  ", "stack", true},
		{"no partial credit", "a stack", "stack", false},
		{"empty answer", "", "stack", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Grade(models.AnswerItem{
				Question:      "LIFO structure?",
				UserAnswer:    tc.user,
				CorrectAnswer: tc.correct,
				Type:          models.TypeShort,
			})
			if v.Correct != tc.want {
				t.Errorf("Expected correct=%v, got %v", tc.want, v.Correct)
			}
		})
	}
}

func TestGradeQAIsNotAutoGraded(t *testing.T) {
	v := Grade(models.AnswerItem{
		Question:       "explain TCP handshakes",
		UserAnswer:     "SYN, SYN-ACK, ACK",
		CorrectAnswer:  "",
		Type:           models.TypeQA,
		ExpectedPoints: []string{"SYN", "SYN-ACK", "ACK"},
	})
	if v.Graded {
		t.Error("qa items must not be auto-graded")
	}
	if v.Correct {
		t.Error("ungraded verdict must not be correct")
	}
}

func TestGradeIsIdempotent(t *testing.T) {
	item := models.AnswerItem{
		Question:      "the sky is blue",
		UserAnswer:    "Yes",
		CorrectAnswer: "true",
		Type:          models.TypeTrueFalse,
	}
	first := Grade(item)
	second := Grade(item)
	if first != second {
		t.Errorf("Grading is not idempotent: %+v vs %+v", first, second)
	}
	if !first.Correct {
		t.Error("Expected synonym-mapped answer to be correct")
	}
}
