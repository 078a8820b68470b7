package adaptive

// Config holds the thresholds driving mastery and level decisions.
type Config struct {
	// Exercise-driven transitions: promote at accuracy >= Promote,
	// demote below Demote, hold in between.
	PromoteThreshold int `json:"promote_threshold"`
	DemoteThreshold  int `json:"demote_threshold"`

	// Diagnostic level bands: score < Intermediate -> Beginner,
	// score >= Advanced -> Advanced, Intermediate otherwise.
	DiagnosticIntermediate int `json:"diagnostic_intermediate"`
	DiagnosticAdvanced     int `json:"diagnostic_advanced"`

	// Mastery EMA blend: mastery = old*Retention + accuracy*Weight.
	MasteryRetention float64 `json:"mastery_retention"`
	MasteryWeight    float64 `json:"mastery_weight"`
}

// DefaultConfig returns the production thresholds. The two-threshold
// band (80/40) with a hold zone in the middle keeps a single noisy
// batch from flapping the level.
func DefaultConfig() *Config {
	return &Config{
		PromoteThreshold:       80,
		DemoteThreshold:        40,
		DiagnosticIntermediate: 40,
		DiagnosticAdvanced:     70,
		MasteryRetention:       0.7,
		MasteryWeight:          0.3,
	}
}

// BatchOutcome is the graded view of one submitted batch before it is
// folded into the session.
type BatchOutcome struct {
	Correct int `json:"correct"`
	// Graded counts the auto-gradable items (qa excluded); it is the
	// accuracy denominator.
	Graded int `json:"graded"`
	// Attempted counts every item, qa included.
	Attempted int `json:"attempted"`
}
