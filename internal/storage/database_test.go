package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizdrill/quizdrill/internal/srs"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "quizdrill.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadHistoryEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	h, err := db.LoadHistory(srs.DefaultPolicy())
	if err != nil {
		t.Fatalf("LoadHistory() returned an unexpected error: %v", err)
	}
	if len(h.Cards) != 0 || len(h.Sessions) != 0 || h.TotalQuestionsReviewed != 0 {
		t.Errorf("Expected an empty snapshot, but got %+v", h)
	}
}

func TestSaveAndLoadHistoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	p := srs.DefaultPolicy()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	h := srs.NewHistory()
	for i, id := range []string{"q001", "q002"} {
		card, err := p.NextReview(p.NewCard(id, now), srs.Good, now.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("NextReview() returned an unexpected error: %v", err)
		}
		h = h.WithReview(card, i == 0)
	}
	h = h.WithSession(srs.Session{
		StartedAt:         now,
		EndedAt:           now.Add(5 * time.Minute),
		QuestionsReviewed: 2,
		CorrectAnswers:    1,
		IncorrectAnswers:  1,
	})

	if err := db.SaveHistory(h); err != nil {
		t.Fatalf("SaveHistory() returned an unexpected error: %v", err)
	}

	loaded, err := db.LoadHistory(p)
	if err != nil {
		t.Fatalf("LoadHistory() returned an unexpected error: %v", err)
	}

	if len(loaded.Cards) != 2 {
		t.Fatalf("Expected 2 cards, but got %d", len(loaded.Cards))
	}
	for id, want := range h.Cards {
		got, ok := loaded.Cards[id]
		if !ok {
			t.Fatalf("Expected card %s to survive the round trip", id)
		}
		if got.Repetitions != want.Repetitions || got.IntervalDays != want.IntervalDays || got.EaseFactor != want.EaseFactor {
			t.Errorf("Card %s: expected %+v, but got %+v", id, want, got)
		}
		if !got.DueAt.Equal(want.DueAt) {
			t.Errorf("Card %s: expected due at %v, but got %v", id, want.DueAt, got.DueAt)
		}
		if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(*want.LastReviewedAt) {
			t.Errorf("Card %s: expected last review %v, but got %v", id, want.LastReviewedAt, got.LastReviewedAt)
		}
	}

	if len(loaded.Sessions) != 1 {
		t.Fatalf("Expected 1 session, but got %d", len(loaded.Sessions))
	}
	s := loaded.Sessions[0]
	if s.QuestionsReviewed != 2 || s.CorrectAnswers != 1 || s.IncorrectAnswers != 1 {
		t.Errorf("Expected session counters 2/1/1, but got %+v", s)
	}

	if loaded.TotalQuestionsReviewed != 2 || loaded.TotalCorrect != 1 || loaded.TotalIncorrect != 1 {
		t.Errorf("Expected totals 2/1/1, but got %d/%d/%d",
			loaded.TotalQuestionsReviewed, loaded.TotalCorrect, loaded.TotalIncorrect)
	}
}

func TestSaveHistoryAppendsSessions(t *testing.T) {
	db := openTestDB(t)
	p := srs.DefaultPolicy()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	h := srs.NewHistory().WithSession(srs.Session{StartedAt: now, EndedAt: now.Add(time.Minute)})
	if err := db.SaveHistory(h); err != nil {
		t.Fatalf("SaveHistory() returned an unexpected error: %v", err)
	}

	// Saving the same snapshot again must not duplicate the session.
	if err := db.SaveHistory(h); err != nil {
		t.Fatalf("SaveHistory() returned an unexpected error: %v", err)
	}
	h = h.WithSession(srs.Session{StartedAt: now.Add(time.Hour), EndedAt: now.Add(2 * time.Hour)})
	if err := db.SaveHistory(h); err != nil {
		t.Fatalf("SaveHistory() returned an unexpected error: %v", err)
	}

	loaded, err := db.LoadHistory(p)
	if err != nil {
		t.Fatalf("LoadHistory() returned an unexpected error: %v", err)
	}
	if len(loaded.Sessions) != 2 {
		t.Errorf("Expected 2 sessions, but got %d", len(loaded.Sessions))
	}
}

func TestLoadHistoryRejectsMalformedData(t *testing.T) {
	db := openTestDB(t)

	// Corrupt the stored counters directly; the loader must surface this.
	if _, err := db.conn.Exec(`UPDATE totals SET correct_answers = -4 WHERE id = 1`); err != nil {
		t.Fatalf("failed to corrupt totals: %v", err)
	}
	if _, err := db.LoadHistory(srs.DefaultPolicy()); !errors.Is(err, srs.ErrInvalidHistory) {
		t.Errorf("Expected ErrInvalidHistory, but got %v", err)
	}
}

func TestDeleteCard(t *testing.T) {
	db := openTestDB(t)
	p := srs.DefaultPolicy()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	h := srs.NewHistory()
	card, err := p.NextReview(p.NewCard("gone", now), srs.Good, now)
	if err != nil {
		t.Fatalf("NextReview() returned an unexpected error: %v", err)
	}
	h = h.WithReview(card, true)
	if err := db.SaveHistory(h); err != nil {
		t.Fatalf("SaveHistory() returned an unexpected error: %v", err)
	}

	if err := db.DeleteCard("gone"); err != nil {
		t.Fatalf("DeleteCard() returned an unexpected error: %v", err)
	}
	ids, err := db.ListCardIDs()
	if err != nil {
		t.Fatalf("ListCardIDs() returned an unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no cards after delete, but got %v", ids)
	}
}
