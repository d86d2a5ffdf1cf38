package srs

import (
	"math"
	"time"
)

// Stats summarizes the learner's standing over a question universe.
type Stats struct {
	NewCount      int // items never reviewed
	DueCount      int // reviewed cards whose due time has arrived
	MatureCount   int // cards at or past the maturity threshold
	LearningCount int // reviewed cards still consolidating
	TotalReviewed int
	Accuracy      int // integer percent; 0 when nothing has been answered
}

// SmartPracticeStats computes the summary from the snapshot and the size of
// the item universe the caller cares about. It fails with ErrInvalidHistory
// on malformed snapshots rather than reporting garbage counts.
func (p Policy) SmartPracticeStats(h History, universeSize int, now time.Time) (Stats, error) {
	if err := h.Validate(p); err != nil {
		return Stats{}, err
	}

	s := Stats{
		NewCount:      universeSize - len(h.Cards),
		TotalReviewed: h.TotalQuestionsReviewed,
	}
	if s.NewCount < 0 {
		s.NewCount = 0
	}

	for _, c := range h.Cards {
		if c.Due(now) {
			s.DueCount++
		}
		if p.Mature(c) {
			s.MatureCount++
		}
	}
	s.LearningCount = len(h.Cards) - s.MatureCount

	if answered := h.TotalCorrect + h.TotalIncorrect; answered > 0 {
		s.Accuracy = int(math.Round(float64(h.TotalCorrect) / float64(answered) * 100))
	}
	return s, nil
}
