package srs

import (
	"fmt"
	"time"
)

// Session summarizes one sitting. The sessions slice in History is
// append-only.
type Session struct {
	StartedAt         time.Time
	EndedAt           time.Time
	QuestionsReviewed int
	CorrectAnswers    int
	IncorrectAnswers  int
}

// History is the learner's full scheduling state as one immutable snapshot.
// An item with no entry in Cards is "new": never reviewed. Every operation
// takes the current snapshot and returns the next one; the surrounding
// application owns persisting the latest value.
type History struct {
	Cards                  map[string]Card
	Sessions               []Session
	TotalQuestionsReviewed int
	TotalCorrect           int
	TotalIncorrect         int
}

// NewHistory returns an empty snapshot.
func NewHistory() History {
	return History{Cards: make(map[string]Card)}
}

// WithReview folds one reviewed card into the snapshot and bumps the running
// counters. correct is the objective answer check, independent of the grade
// that produced the card. The receiver is left untouched.
func (h History) WithReview(card Card, correct bool) History {
	next := h.clone()
	next.Cards[card.ItemID] = card
	next.TotalQuestionsReviewed++
	if correct {
		next.TotalCorrect++
	} else {
		next.TotalIncorrect++
	}
	return next
}

// WithSession appends a finished session summary. The receiver is left
// untouched.
func (h History) WithSession(s Session) History {
	next := h.clone()
	next.Sessions = append(next.Sessions, s)
	return next
}

// clone returns a deep copy so callers can treat snapshots as values.
func (h History) clone() History {
	next := h
	next.Cards = make(map[string]Card, len(h.Cards))
	for id, c := range h.Cards {
		next.Cards[id] = c
	}
	next.Sessions = append([]Session(nil), h.Sessions...)
	return next
}

// Validate checks a snapshot, typically one loaded from persistence, against
// the core invariants. Malformed data is surfaced, never silently repaired.
// A missing card for a known item is explicitly not an error: it means the
// item is new.
func (h History) Validate(p Policy) error {
	if h.TotalQuestionsReviewed < 0 || h.TotalCorrect < 0 || h.TotalIncorrect < 0 {
		return fmt.Errorf("%w: negative counters (%d/%d/%d)",
			ErrInvalidHistory, h.TotalQuestionsReviewed, h.TotalCorrect, h.TotalIncorrect)
	}
	if h.TotalCorrect+h.TotalIncorrect > h.TotalQuestionsReviewed {
		return fmt.Errorf("%w: answers (%d) exceed reviews (%d)",
			ErrInvalidHistory, h.TotalCorrect+h.TotalIncorrect, h.TotalQuestionsReviewed)
	}
	for id, c := range h.Cards {
		if id != c.ItemID {
			return fmt.Errorf("%w: card %q stored under key %q", ErrInvalidHistory, c.ItemID, id)
		}
		if c.Repetitions < 0 || c.IntervalDays < 0 {
			return fmt.Errorf("%w: card %q has negative repetitions or interval", ErrInvalidHistory, id)
		}
		if c.EaseFactor < p.MinEase {
			return fmt.Errorf("%w: card %q ease %.2f below floor %.2f",
				ErrInvalidHistory, id, c.EaseFactor, p.MinEase)
		}
		if c.LastReviewedAt != nil {
			want := c.LastReviewedAt.Add(time.Duration(c.IntervalDays) * 24 * time.Hour)
			if !c.DueAt.Equal(want) {
				return fmt.Errorf("%w: card %q due %s does not match last review %s + %d days",
					ErrInvalidHistory, id, c.DueAt.Format(time.RFC3339),
					c.LastReviewedAt.Format(time.RFC3339), c.IntervalDays)
			}
		}
	}
	return nil
}
