package storage

import (
	"database/sql"
	"fmt"

	"github.com/quizdrill/quizdrill/internal/srs"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection. It is the
// persistence collaborator for the scheduling core: it loads the last-saved
// History snapshot at startup and accepts the updated snapshot after each
// review and at session end. The core itself never touches it.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// LoadHistory reads the whole snapshot and validates it against the policy.
// Malformed persisted data surfaces as srs.ErrInvalidHistory; it is never
// silently repaired.
func (db *DB) LoadHistory(p srs.Policy) (srs.History, error) {
	h := srs.NewHistory()

	rows, err := db.conn.Query(`
		SELECT item_id, repetitions, interval_days, ease_factor, due_at, last_reviewed_at
		FROM cards
	`)
	if err != nil {
		return srs.History{}, fmt.Errorf("failed to load cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c srs.Card
		var lastReviewed sql.NullTime
		if err := rows.Scan(&c.ItemID, &c.Repetitions, &c.IntervalDays, &c.EaseFactor, &c.DueAt, &lastReviewed); err != nil {
			return srs.History{}, fmt.Errorf("failed to scan card row: %w", err)
		}
		if lastReviewed.Valid {
			t := lastReviewed.Time
			c.LastReviewedAt = &t
		}
		h.Cards[c.ItemID] = c
	}
	if err := rows.Err(); err != nil {
		return srs.History{}, fmt.Errorf("failed to iterate card rows: %w", err)
	}

	sessionRows, err := db.conn.Query(`
		SELECT started_at, ended_at, questions_reviewed, correct_answers, incorrect_answers
		FROM sessions ORDER BY id
	`)
	if err != nil {
		return srs.History{}, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		var s srs.Session
		if err := sessionRows.Scan(&s.StartedAt, &s.EndedAt, &s.QuestionsReviewed, &s.CorrectAnswers, &s.IncorrectAnswers); err != nil {
			return srs.History{}, fmt.Errorf("failed to scan session row: %w", err)
		}
		h.Sessions = append(h.Sessions, s)
	}
	if err := sessionRows.Err(); err != nil {
		return srs.History{}, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	row := db.conn.QueryRow(`SELECT questions_reviewed, correct_answers, incorrect_answers FROM totals WHERE id = 1`)
	if err := row.Scan(&h.TotalQuestionsReviewed, &h.TotalCorrect, &h.TotalIncorrect); err != nil {
		return srs.History{}, fmt.Errorf("failed to load totals: %w", err)
	}

	if err := h.Validate(p); err != nil {
		return srs.History{}, err
	}
	return h, nil
}

// SaveHistory writes the whole snapshot in one transaction: cards are
// replaced, sessions beyond those already stored are appended, and the
// running counters are updated.
func (db *DB) SaveHistory(h srs.History) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	for _, c := range h.Cards {
		var lastReviewed sql.NullTime
		if c.LastReviewedAt != nil {
			lastReviewed = sql.NullTime{Time: *c.LastReviewedAt, Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO cards (item_id, repetitions, interval_days, ease_factor, due_at, last_reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ItemID, c.Repetitions, c.IntervalDays, c.EaseFactor, c.DueAt, lastReviewed)
		if err != nil {
			return fmt.Errorf("failed to insert card %s: %w", c.ItemID, err)
		}
	}

	var stored int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	if stored > len(h.Sessions) {
		return fmt.Errorf("session log is append-only: snapshot has %d sessions, store has %d", len(h.Sessions), stored)
	}
	for _, s := range h.Sessions[stored:] {
		_, err := tx.Exec(`
			INSERT INTO sessions (started_at, ended_at, questions_reviewed, correct_answers, incorrect_answers)
			VALUES (?, ?, ?, ?, ?)
		`, s.StartedAt, s.EndedAt, s.QuestionsReviewed, s.CorrectAnswers, s.IncorrectAnswers)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
	}

	_, err = tx.Exec(`
		UPDATE totals SET questions_reviewed = ?, correct_answers = ?, incorrect_answers = ?
		WHERE id = 1
	`, h.TotalQuestionsReviewed, h.TotalCorrect, h.TotalIncorrect)
	if err != nil {
		return fmt.Errorf("failed to update totals: %w", err)
	}

	return tx.Commit()
}

// ListCardIDs returns the item ids with stored scheduling state.
func (db *DB) ListCardIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT item_id FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteCard removes an item's scheduling state. Used when the item has
// disappeared from the question bank.
func (db *DB) DeleteCard(itemID string) error {
	_, err := db.conn.Exec(`DELETE FROM cards WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", itemID, err)
	}
	return nil
}
