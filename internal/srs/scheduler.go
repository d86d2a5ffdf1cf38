package srs

import (
	"fmt"
	"math"
	"time"
)

// NextReview applies one review to the card and returns the replacement
// value. The input card is not mutated. now is read once by the caller and
// passed in, so a single call is internally consistent.
//
// The update rule is a four-grade variant of the classical two-factor
// algorithm. Hard is deliberately not a failure: repetitions still increment
// and only the ease takes a penalty, matching the four time bands surfaced
// to the learner (relearn now / 1 day / several days / a week or more).
func (p Policy) NextReview(card Card, grade Grade, now time.Time) (Card, error) {
	if !grade.Valid() {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	next := card
	switch grade {
	case Again:
		next.Repetitions = 0
		next.IntervalDays = 0
		next.EaseFactor = math.Max(p.MinEase, card.EaseFactor-p.AgainEasePenalty)
	case Hard:
		next.Repetitions = card.Repetitions + 1
		next.IntervalDays = p.HardIntervalDays
		next.EaseFactor = math.Max(p.MinEase, card.EaseFactor-p.HardEasePenalty)
	case Good:
		next.Repetitions = card.Repetitions + 1
		next.IntervalDays = p.nextGoodInterval(card)
	case Easy:
		next.Repetitions = card.Repetitions + 1
		next.IntervalDays = int(math.Round(float64(p.nextGoodInterval(card)) * p.EasyIntervalBonus))
		next.EaseFactor = card.EaseFactor + p.EasyEaseBonus
	}

	next.DueAt = now.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
	reviewed := now
	next.LastReviewedAt = &reviewed
	return next, nil
}

// nextGoodInterval is the growth rule shared by Good and Easy. The first two
// successful repetitions use fixed steps; after that the interval grows
// geometrically with the ease factor, floored to intervalDays+1 so growth
// stays strict even for an ease near the floor.
func (p Policy) nextGoodInterval(card Card) int {
	switch card.Repetitions {
	case 0:
		return p.FirstGoodIntervalDays
	case 1:
		return p.SecondGoodIntervalDays
	}
	next := int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
	if next <= card.IntervalDays {
		next = card.IntervalDays + 1
	}
	return next
}
