package models

// Question types accepted on submitted answer items. "mixed" is a
// generation-request parameter only and is never a valid item type.
const (
	TypeMCQ       = "mcq"
	TypeTrueFalse = "true_false"
	TypeShort     = "short"
	TypeQA        = "qa"
)

// QuestionTypes lists the valid item types in a stable order.
var QuestionTypes = []string{TypeMCQ, TypeTrueFalse, TypeShort, TypeQA}

// AnswerItem is one submitted (question, answer) pair. Options and
// ExpectedPoints are carried only by the types that use them; Topic is
// an optional caller-supplied tag, the service never classifies topics
// itself.
type AnswerItem struct {
	Question       string   `bson:"question" json:"question"`
	UserAnswer     string   `bson:"user_answer" json:"user_answer"`
	CorrectAnswer  string   `bson:"correct_answer" json:"correct_answer"`
	Type           string   `bson:"type" json:"type"`
	Topic          string   `bson:"topic,omitempty" json:"topic,omitempty"`
	Options        []string `bson:"options,omitempty" json:"options,omitempty"`
	ExpectedPoints []string `bson:"expected_points,omitempty" json:"expected_points,omitempty"`
}

// ValidType reports whether t is a gradable item type.
func ValidType(t string) bool {
	switch t {
	case TypeMCQ, TypeTrueFalse, TypeShort, TypeQA:
		return true
	}
	return false
}

// DiagnosticResult is returned after grading a diagnostic batch.
type DiagnosticResult struct {
	Score   int    `json:"score"`
	Level   string `json:"level"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// ExerciseResult is returned after grading an exercise batch.
type ExerciseResult struct {
	Accuracy     int     `json:"accuracy"`
	Correct      int     `json:"correct"`
	Total        int     `json:"total"`
	NewLevel     string  `json:"new_level"`
	LevelChanged bool    `json:"level_changed"`
	Mastery      float64 `json:"mastery"`
}
