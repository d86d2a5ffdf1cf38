package srs

import "time"

// Card is one item's scheduling state. Cards are replaced as whole values by
// the scheduler; nothing mutates a Card in place.
type Card struct {
	ItemID         string
	Repetitions    int     // consecutive non-Again reviews since the last reset
	IntervalDays   int     // 0 means due again within the same session
	EaseFactor     float64 // never below the policy's ease floor
	DueAt          time.Time
	LastReviewedAt *time.Time // nil before the first review
}

// NewCard returns the scheduling state for an item seen for the first time:
// immediately due, never reviewed. Cards are created lazily on first review,
// not when the item enters the question bank.
func (p Policy) NewCard(itemID string, now time.Time) Card {
	return Card{
		ItemID:       itemID,
		Repetitions:  0,
		IntervalDays: 0,
		EaseFactor:   p.InitialEase,
		DueAt:        now,
	}
}

// Due reports whether the card's scheduled review time has arrived.
func (c Card) Due(now time.Time) bool {
	return !c.DueAt.After(now)
}

// Mature reports whether the card's interval has crossed the policy's
// maturity threshold.
func (p Policy) Mature(c Card) bool {
	return c.IntervalDays >= p.MatureIntervalDays
}
