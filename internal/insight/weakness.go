// Package insight derives weak topics/types and study recommendations
// from a session's accumulated accuracy tables.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tutor-service/internal/models"
)

// Weakness kinds as serialized to callers.
const (
	KindTopic        = "topic"
	KindQuestionType = "question_type"
)

// Minimum-sample and accuracy guards: a key is weak only below 60%
// accuracy with at least 2 attempts, so one wrong answer on a topic
// seen once never flags it.
const (
	weakAccuracyBelow = 60
	weakMinSamples    = 2
)

// Weakness is one ranked weak topic or question type.
type Weakness struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Accuracy int    `json:"accuracy"`
	total    int
}

// DeriveWeaknesses ranks weak topics and question types, worst accuracy
// first; ties rank the better-evidenced key (higher total) first.
func DeriveWeaknesses(s *models.Session) []Weakness {
	out := collect(nil, s.TopicAccuracy, KindTopic)
	out = collect(out, s.TypeAccuracy, KindQuestionType)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		if out[i].total != out[j].total {
			return out[i].total > out[j].total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func collect(out []Weakness, table map[string]*models.AccuracyCell, kind string) []Weakness {
	for name, cell := range table {
		if cell.Total < weakMinSamples {
			continue
		}
		acc := roundPct(cell.Correct, cell.Total)
		if acc < weakAccuracyBelow {
			out = append(out, Weakness{Kind: kind, Name: name, Accuracy: acc, total: cell.Total})
		}
	}
	return out
}

// Recommendations renders deterministic study advice: a mastery-band
// opener, one line per top-3 weakness, and a streak callout.
func Recommendations(s *models.Session, weaknesses []Weakness) []string {
	recs := []string{}

	switch {
	case s.Mastery < 30:
		recs = append(recs, fmt.Sprintf("Focus on building fundamentals in %s.", s.Subject))
	case s.Mastery < 60:
		recs = append(recs, "Solid progress. Continue practicing to strengthen weak areas.")
	default:
		recs = append(recs, "Strong performance. Consider moving to advanced topics.")
	}

	seen := map[string]bool{}
	for i, w := range weaknesses {
		if i >= 3 {
			break
		}
		var line string
		if w.Kind == KindTopic {
			line = fmt.Sprintf("Review %s -- accuracy is %d%%.", w.Name, w.Accuracy)
		} else {
			line = fmt.Sprintf("Practice more %s questions.", strings.ReplaceAll(w.Name, "_", " "))
		}
		if !seen[line] {
			seen[line] = true
			recs = append(recs, line)
		}
	}

	if s.Streak >= 3 {
		recs = append(recs, fmt.Sprintf("Current streak: %d rounds correct in a row.", s.Streak))
	}
	return recs
}

// SuggestNextTopic picks an un-attempted topic from the candidate list,
// or the attempted one with the lowest accuracy. Empty candidates yield
// the empty string. Topic classification itself is the caller's
// concern; this only ranks what it is given.
func SuggestNextTopic(s *models.Session, topics []string) string {
	if len(topics) == 0 {
		return ""
	}
	for _, t := range topics {
		if _, attempted := s.TopicAccuracy[t]; !attempted {
			return t
		}
	}

	best := topics[0]
	bestAcc := math.MaxFloat64
	for _, t := range topics {
		cell := s.TopicAccuracy[t]
		acc := float64(cell.Correct) / float64(max(cell.Total, 1))
		if acc < bestAcc {
			bestAcc = acc
			best = t
		}
	}
	return best
}

func roundPct(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
