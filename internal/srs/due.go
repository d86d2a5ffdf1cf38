package srs

import (
	"sort"
	"time"
)

// DueQuestions selects the item ids from universeIDs that should be shown
// now: reviewed cards whose due time has arrived come first, most overdue
// first (ties broken by item id for determinism), followed by never-reviewed
// items in the order they appeared in universeIDs. Cards due in the future
// are excluded entirely.
//
// Recomputing with the same inputs yields the same sequence. An empty
// universe or an empty result is a normal outcome, not an error.
func DueQuestions(universeIDs []string, h History, now time.Time) []string {
	var due []Card
	var fresh []string
	for _, id := range universeIDs {
		card, ok := h.Cards[id]
		if !ok {
			fresh = append(fresh, id)
			continue
		}
		if card.Due(now) {
			due = append(due, card)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].ItemID < due[j].ItemID
	})

	out := make([]string, 0, len(due)+len(fresh))
	for _, c := range due {
		out = append(out, c.ItemID)
	}
	return append(out, fresh...)
}
