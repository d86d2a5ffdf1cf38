package sync

import (
	"fmt"
	"log/slog"

	"github.com/quizdrill/quizdrill/internal/bank"
	"github.com/quizdrill/quizdrill/internal/storage"
)

// Reconcile aligns stored scheduling state with the loaded question bank.
// Cards whose item id no longer exists in the bank are orphans left behind
// by a bank update and get pruned; bank items without a card need nothing,
// they are simply "new".
func Reconcile(db *storage.DB, b *bank.Bank) error {
	storedIDs, err := db.ListCardIDs()
	if err != nil {
		return fmt.Errorf("failed to list stored cards: %w", err)
	}

	known := make(map[string]bool, b.Len())
	for _, id := range b.IDs() {
		known[id] = true
	}

	var orphans int
	for _, id := range storedIDs {
		if known[id] {
			continue
		}
		slog.Info("orphaned card, deleting", "item_id", id)
		if err := db.DeleteCard(id); err != nil {
			return fmt.Errorf("failed to delete orphaned card %s: %w", id, err)
		}
		orphans++
	}

	slog.Info("reconciliation complete",
		"bank_questions", b.Len(),
		"stored_cards", len(storedIDs),
		"orphaned_deleted", orphans,
	)
	return nil
}
