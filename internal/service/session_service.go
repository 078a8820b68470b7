package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"tutor-service/internal/adaptive"
	"tutor-service/internal/insight"
	"tutor-service/internal/models"
	"tutor-service/internal/repository"

	"github.com/google/uuid"
)

// SessionStore is the persistence surface the service needs; the Mongo
// repository implements it.
type SessionStore interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Replace(ctx context.Context, session *models.Session) error
}

// ProgressReport is the read-only dashboard projection of a session.
type ProgressReport struct {
	SessionID        string                           `json:"session_id"`
	Subject          string                           `json:"subject"`
	Level            string                           `json:"level"`
	Mastery          float64                          `json:"mastery"`
	Accuracy         int                              `json:"accuracy"`
	TotalCorrect     int                              `json:"total_correct"`
	TotalAttempts    int                              `json:"total_attempts"`
	LevelHistory     []string                         `json:"level_history"`
	Weaknesses       []insight.Weakness               `json:"weaknesses"`
	Recommendations  []string                         `json:"recommendations"`
	TopicAccuracy    map[string]*models.AccuracyCell  `json:"topic_accuracy"`
	TypeAccuracy     map[string]*models.AccuracyCell  `json:"type_accuracy"`
	Streak           int                              `json:"streak"`
	BestStreak       int                              `json:"best_streak"`
	TotalTimeSeconds float64                          `json:"total_time_seconds"`
	SuggestedTopic   string                           `json:"suggested_topic,omitempty"`
}

// WeaknessProfileReport is the detailed per-key diagnostic view.
type WeaknessProfileReport struct {
	SessionID       string                            `json:"session_id"`
	Subject         string                            `json:"subject"`
	WeaknessProfile map[string]*models.WeaknessDetail `json:"weakness_profile"`
}

// SessionService owns all session mutations. Mutating calls for the
// same session id are serialized through a per-id lock: the mastery EMA
// and the counters are read-modify-write, so overlapping unserialized
// batches would lose updates. Different ids proceed in parallel.
type SessionService struct {
	store   SessionStore
	cache   *repository.SessionCache
	manager *adaptive.Manager

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionService(store SessionStore, cache *repository.SessionCache) *SessionService {
	return &SessionService{
		store:   store,
		cache:   cache,
		manager: adaptive.NewManager(nil), // default thresholds
		locks:   map[string]*sync.Mutex{},
	}
}

func (s *SessionService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[id]
	if l == nil {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateSession starts a fresh session for a subject.
func (s *SessionService) CreateSession(ctx context.Context, userID, subject string) (*models.Session, error) {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	session := models.NewSession(id, userID, subject)
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, session)
	return session, nil
}

// GetSession reads a session through the cache.
func (s *SessionService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if session, err := s.cache.Get(ctx, id); err == nil {
		return session, nil
	}
	// any cache miss or failure falls through to Mongo
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, session)
	return session, nil
}

// SubmitDiagnostic grades a diagnostic batch and assigns the level.
func (s *SessionService) SubmitDiagnostic(ctx context.Context, sessionID string, items []models.AnswerItem) (*models.DiagnosticResult, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updated := session.Clone()
	result, err := s.manager.ApplyDiagnostic(updated, items, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, updated); err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitExercise grades an exercise batch, moving mastery and level.
func (s *SessionService) SubmitExercise(ctx context.Context, sessionID string, items []models.AnswerItem, totalTimeSeconds float64, perQuestionTimes []float64) (*models.ExerciseResult, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updated := session.Clone()
	elapsed := resolveTime(len(items), totalTimeSeconds, perQuestionTimes)
	result, err := s.manager.ApplyExercise(updated, items, elapsed, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, updated); err != nil {
		return nil, err
	}
	return result, nil
}

// commit persists the fully-applied session and refreshes the cache.
// It runs only after the whole batch succeeded, so a failed batch
// leaves no partial state behind.
func (s *SessionService) commit(ctx context.Context, session *models.Session) error {
	if err := s.store.Replace(ctx, session); err != nil {
		return err
	}
	_ = s.cache.Set(ctx, session)
	return nil
}

// Progress builds the dashboard projection, including derived
// weaknesses and recommendations. candidateTopics, when supplied, also
// yields a next-topic suggestion.
func (s *SessionService) Progress(ctx context.Context, sessionID string, candidateTopics []string) (*ProgressReport, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	weaknesses := insight.DeriveWeaknesses(session)
	report := &ProgressReport{
		SessionID:        session.ID,
		Subject:          session.Subject,
		Level:            session.Level,
		Mastery:          session.Mastery,
		Accuracy:         overallAccuracy(session),
		TotalCorrect:     session.TotalCorrect,
		TotalAttempts:    session.TotalAttempts,
		LevelHistory:     session.LevelHistory,
		Weaknesses:       weaknesses,
		Recommendations:  insight.Recommendations(session, weaknesses),
		TopicAccuracy:    session.TopicAccuracy,
		TypeAccuracy:     session.TypeAccuracy,
		Streak:           session.Streak,
		BestStreak:       session.BestStreak,
		TotalTimeSeconds: session.TotalTimeSeconds,
		SuggestedTopic:   insight.SuggestNextTopic(session, candidateTopics),
	}
	if report.Weaknesses == nil {
		report.Weaknesses = []insight.Weakness{}
	}
	return report, nil
}

// WeaknessProfile returns the detailed per-topic/type diagnostic map.
func (s *SessionService) WeaknessProfile(ctx context.Context, sessionID string) (*WeaknessProfileReport, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &WeaknessProfileReport{
		SessionID:       session.ID,
		Subject:         session.Subject,
		WeaknessProfile: session.WeaknessProfile,
	}, nil
}

func overallAccuracy(s *models.Session) int {
	if s.TotalAttempts == 0 {
		return 0
	}
	return roundPct(s.TotalCorrect, s.TotalAttempts)
}

func roundPct(correct, total int) int {
	return int(float64(correct)/float64(total)*100 + 0.5)
}

// resolveTime mirrors the submit-time rules: a per-question list is
// used only when it covers every item; negatives clamp to zero.
func resolveTime(itemCount int, total float64, perQuestion []float64) float64 {
	if len(perQuestion) == itemCount && itemCount > 0 {
		sum := 0.0
		for _, t := range perQuestion {
			if t > 0 {
				sum += t
			}
		}
		return sum
	}
	if total > 0 {
		return total
	}
	return 0
}
