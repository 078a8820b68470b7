package models

import "time"

// Skill levels, ordered lowest to highest.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Levels is the promotion/demotion order used by the level engine.
var Levels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// AccuracyCell is one correct/total counter pair in an accuracy table.
type AccuracyCell struct {
	Correct int `bson:"correct" json:"correct"`
	Total   int `bson:"total" json:"total"`
}

// WeaknessDetail is the fine-grained diagnostic record kept per
// topic/type key in the weakness profile.
type WeaknessDetail struct {
	MasteryScore      float64   `bson:"mastery_score" json:"mastery_score"`
	ErrorTypes        []string  `bson:"error_types" json:"error_types"`
	RecurringPatterns []string  `bson:"recurring_patterns" json:"recurring_patterns"`
	LastUpdated       time.Time `bson:"last_updated" json:"last_updated"`
	// ErrorBatches counts, per error category, how many distinct graded
	// batches it appeared in. A category becomes recurring at 2.
	ErrorBatches map[string]int `bson:"error_batches" json:"error_batches,omitempty"`
}

// Session is the root aggregate for one learner+subject, keyed by
// session id. Subject is immutable after creation; Level changes only
// through the level engine.
type Session struct {
	ID               string                     `bson:"_id" json:"session_id"`
	UserID           string                     `bson:"user_id" json:"user_id"`
	Subject          string                     `bson:"subject" json:"subject"`
	Level            string                     `bson:"level" json:"level"`
	Mastery          float64                    `bson:"mastery" json:"mastery"`
	LevelHistory     []string                   `bson:"level_history" json:"level_history"`
	TotalCorrect     int                        `bson:"total_correct" json:"total_correct"`
	TotalAttempts    int                        `bson:"total_attempts" json:"total_attempts"`
	TopicAccuracy    map[string]*AccuracyCell   `bson:"topic_accuracy" json:"topic_accuracy"`
	TypeAccuracy     map[string]*AccuracyCell   `bson:"type_accuracy" json:"type_accuracy"`
	WeaknessProfile  map[string]*WeaknessDetail `bson:"weakness_profile" json:"weakness_profile"`
	Streak           int                        `bson:"streak" json:"streak"`
	BestStreak       int                        `bson:"best_streak" json:"best_streak"`
	TotalTimeSeconds float64                    `bson:"total_time_seconds" json:"total_time_seconds"`
	CreatedAt        time.Time                  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time                  `bson:"updated_at" json:"updated_at"`
}

// NewSession returns a fresh session with empty counters and baseline mastery.
func NewSession(id, userID, subject string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:              id,
		UserID:          userID,
		Subject:         subject,
		Level:           LevelBeginner,
		LevelHistory:    []string{},
		TopicAccuracy:   map[string]*AccuracyCell{},
		TypeAccuracy:    map[string]*AccuracyCell{},
		WeaknessProfile: map[string]*WeaknessDetail{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy. Batch grading mutates the copy and commits
// it only on success, keeping failed batches all-or-nothing.
func (s *Session) Clone() *Session {
	c := *s
	c.LevelHistory = append([]string(nil), s.LevelHistory...)
	c.TopicAccuracy = cloneAccuracy(s.TopicAccuracy)
	c.TypeAccuracy = cloneAccuracy(s.TypeAccuracy)
	c.WeaknessProfile = make(map[string]*WeaknessDetail, len(s.WeaknessProfile))
	for k, v := range s.WeaknessProfile {
		d := *v
		d.ErrorTypes = append([]string(nil), v.ErrorTypes...)
		d.RecurringPatterns = append([]string(nil), v.RecurringPatterns...)
		d.ErrorBatches = make(map[string]int, len(v.ErrorBatches))
		for et, n := range v.ErrorBatches {
			d.ErrorBatches[et] = n
		}
		c.WeaknessProfile[k] = &d
	}
	return &c
}

func cloneAccuracy(m map[string]*AccuracyCell) map[string]*AccuracyCell {
	out := make(map[string]*AccuracyCell, len(m))
	for k, v := range m {
		cell := *v
		out[k] = &cell
	}
	return out
}
