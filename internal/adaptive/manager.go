// Package adaptive folds graded answer batches into a learner session:
// accuracy counters, the mastery EMA, level transitions and the
// weakness profile. Every operation is pure computation over the
// session passed in; persistence belongs to the caller.
package adaptive

import (
	"fmt"
	"math"
	"sort"
	"time"

	"tutor-service/internal/grading"
	"tutor-service/internal/models"
)

// Manager applies graded batches to sessions.
type Manager struct {
	config *Config
}

// NewManager creates a manager; nil config selects the defaults.
func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{config: config}
}

// GradeBatch validates a batch and grades each item. It returns the
// per-item verdicts and the batch totals without touching any session.
// A batch is rejected whole: one malformed item fails everything.
func (m *Manager) GradeBatch(items []models.AnswerItem) ([]grading.Verdict, *BatchOutcome, error) {
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: empty item list", models.ErrInvalidBatch)
	}

	verdicts := make([]grading.Verdict, len(items))
	outcome := &BatchOutcome{Attempted: len(items)}

	for i, item := range items {
		if item.Question == "" {
			return nil, nil, fmt.Errorf("%w: item %d has no question", models.ErrMalformedItem, i)
		}
		if item.Type == "" {
			return nil, nil, fmt.Errorf("%w: item %d has no type", models.ErrMalformedItem, i)
		}
		if !models.ValidType(item.Type) {
			return nil, nil, fmt.Errorf("%w: item %d has unknown type %q", models.ErrMalformedItem, i, item.Type)
		}
		verdicts[i] = grading.Grade(item)
		if verdicts[i].Graded {
			outcome.Graded++
			if verdicts[i].Correct {
				outcome.Correct++
			}
		}
	}

	if outcome.Graded == 0 {
		// All-qa batches have no accuracy denominator.
		return nil, nil, fmt.Errorf("%w: no auto-gradable items", models.ErrInvalidBatch)
	}
	return verdicts, outcome, nil
}

// ApplyDiagnostic grades a diagnostic batch and assigns the session
// level from the diagnostic score bands. The first graded batch also
// seeds the mastery baseline from the score.
func (m *Manager) ApplyDiagnostic(s *models.Session, items []models.AnswerItem, now time.Time) (*models.DiagnosticResult, error) {
	verdicts, outcome, err := m.GradeBatch(items)
	if err != nil {
		return nil, err
	}

	firstBatch := s.TotalAttempts == 0
	m.accumulate(s, items, verdicts, outcome, now)

	score := roundPct(outcome.Correct, outcome.Graded)
	level := m.DiagnosticLevel(score)
	s.Level = level
	s.LevelHistory = append(s.LevelHistory, level)
	if firstBatch {
		s.Mastery = float64(score)
	}
	s.UpdatedAt = now

	return &models.DiagnosticResult{
		Score:   score,
		Level:   level,
		Correct: outcome.Correct,
		Total:   outcome.Graded,
	}, nil
}

// ApplyExercise grades an exercise batch, blends the mastery EMA and
// runs the promote/demote/hold transition.
func (m *Manager) ApplyExercise(s *models.Session, items []models.AnswerItem, timeSeconds float64, now time.Time) (*models.ExerciseResult, error) {
	verdicts, outcome, err := m.GradeBatch(items)
	if err != nil {
		return nil, err
	}

	m.accumulate(s, items, verdicts, outcome, now)
	if timeSeconds > 0 {
		s.TotalTimeSeconds += timeSeconds
	}

	accuracy := roundPct(outcome.Correct, outcome.Graded)
	s.Mastery = clamp(s.Mastery*m.config.MasteryRetention+float64(accuracy)*m.config.MasteryWeight, 0, 100)

	oldLevel := s.Level
	newLevel := m.NextLevel(oldLevel, accuracy)
	changed := newLevel != oldLevel
	if changed {
		s.Level = newLevel
		s.LevelHistory = append(s.LevelHistory, newLevel)
	}
	s.UpdatedAt = now

	return &models.ExerciseResult{
		Accuracy:     accuracy,
		Correct:      outcome.Correct,
		Total:        outcome.Graded,
		NewLevel:     newLevel,
		LevelChanged: changed,
		Mastery:      s.Mastery,
	}, nil
}

// DiagnosticLevel maps a 0-100 diagnostic score onto a level.
func (m *Manager) DiagnosticLevel(score int) string {
	if score >= m.config.DiagnosticAdvanced {
		return models.LevelAdvanced
	}
	if score >= m.config.DiagnosticIntermediate {
		return models.LevelIntermediate
	}
	return models.LevelBeginner
}

// NextLevel shifts the level one step up or down from batch accuracy,
// or holds it inside the 40-80 band.
func (m *Manager) NextLevel(current string, accuracy int) string {
	idx := levelIndex(current)
	if accuracy >= m.config.PromoteThreshold && idx < len(models.Levels)-1 {
		return models.Levels[idx+1]
	}
	if accuracy < m.config.DemoteThreshold && idx > 0 {
		return models.Levels[idx-1]
	}
	return current
}

// accumulate folds one graded batch into the session counters, streak
// and weakness profile. The fold is commutative over the items: final
// counters do not depend on item order.
func (m *Manager) accumulate(s *models.Session, items []models.AnswerItem, verdicts []grading.Verdict, outcome *BatchOutcome, now time.Time) {
	// touched topic/type keys and the error categories each saw this batch
	touched := map[string]map[string]bool{}
	touch := func(key string) map[string]bool {
		if touched[key] == nil {
			touched[key] = map[string]bool{}
		}
		return touched[key]
	}

	for i, item := range items {
		v := verdicts[i]
		won := v.Graded && v.Correct

		s.TotalAttempts++
		if won {
			s.TotalCorrect++
		}

		cell := ensureCell(s.TypeAccuracy, item.Type)
		cell.Total++
		if won {
			cell.Correct++
		}
		typeErrs := touch("type:" + item.Type)
		if v.Graded && !v.Correct {
			typeErrs[item.Type] = true
		}

		if item.Topic != "" {
			tcell := ensureCell(s.TopicAccuracy, item.Topic)
			tcell.Total++
			if won {
				tcell.Correct++
			}
			topicErrs := touch("topic:" + item.Topic)
			if v.Graded && !v.Correct {
				topicErrs[item.Type] = true
			}
		}
	}

	// streak counts whole batches with every graded item correct
	if outcome.Correct == outcome.Graded {
		s.Streak++
	} else {
		s.Streak = 0
	}
	if s.Streak > s.BestStreak {
		s.BestStreak = s.Streak
	}

	m.updateWeaknessProfile(s, touched, now)
}

// updateWeaknessProfile refreshes the per-key diagnostic detail for
// every topic/type the batch touched.
func (m *Manager) updateWeaknessProfile(s *models.Session, touched map[string]map[string]bool, now time.Time) {
	for key, errs := range touched {
		detail := s.WeaknessProfile[key]
		if detail == nil {
			detail = &models.WeaknessDetail{ErrorBatches: map[string]int{}}
			s.WeaknessProfile[key] = detail
		}
		if detail.ErrorBatches == nil {
			detail.ErrorBatches = map[string]int{}
		}
		for cat := range errs {
			detail.ErrorBatches[cat]++
		}

		detail.MasteryScore = keyAccuracy(s, key)
		detail.ErrorTypes = detail.ErrorTypes[:0]
		detail.RecurringPatterns = detail.RecurringPatterns[:0]
		for cat, batches := range detail.ErrorBatches {
			detail.ErrorTypes = append(detail.ErrorTypes, cat)
			if batches >= 2 {
				detail.RecurringPatterns = append(detail.RecurringPatterns, cat)
			}
		}
		sort.Strings(detail.ErrorTypes)
		sort.Strings(detail.RecurringPatterns)
		detail.LastUpdated = now
	}
}

// keyAccuracy resolves the running accuracy behind a profile key of the
// form "topic:NAME" or "type:NAME".
func keyAccuracy(s *models.Session, key string) float64 {
	var cell *models.AccuracyCell
	if name, ok := cutPrefix(key, "topic:"); ok {
		cell = s.TopicAccuracy[name]
	} else if name, ok := cutPrefix(key, "type:"); ok {
		cell = s.TypeAccuracy[name]
	}
	if cell == nil || cell.Total == 0 {
		return 0
	}
	return float64(roundPct(cell.Correct, cell.Total))
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return s, false
}

func ensureCell(m map[string]*models.AccuracyCell, key string) *models.AccuracyCell {
	cell := m[key]
	if cell == nil {
		cell = &models.AccuracyCell{}
		m[key] = cell
	}
	return cell
}

func levelIndex(level string) int {
	for i, l := range models.Levels {
		if l == level {
			return i
		}
	}
	return 0
}

// roundPct computes round-half-up percent of correct/total.
func roundPct(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
