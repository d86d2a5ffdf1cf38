package bank

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Question is one multiple-choice entry from the question bank. Several
// answers can be correct at once.
type Question struct {
	ID                   string   `json:"id" validate:"required"`
	QuestionNumber       int      `json:"questionNumber"`
	Text                 string   `json:"question" validate:"required"`
	Options              []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswerIndexes []int    `json:"correctAnswerIndexes" validate:"required,min=1"`
	Explanation          string   `json:"explanation"`
	Topic                string   `json:"topic"`
}

// File mirrors the persisted questions.json shape.
type File struct {
	Questions   []Question `json:"questions"`
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
}

// Bank is an in-memory question bank. Question order follows the source
// file, which is the order new items are introduced in.
type Bank struct {
	questions []Question
	byID      map[string]Question
}

// Load reads and validates a question bank from the given path.
func Load(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank: %w", err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a question bank from an io.Reader.
func Parse(r io.Reader) (*Bank, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}

	v := validator.New()
	byID := make(map[string]Question, len(file.Questions))
	for i, q := range file.Questions {
		if err := v.Struct(q); err != nil {
			return nil, fmt.Errorf("question %d (%q): %w", i, q.ID, err)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		for _, idx := range q.CorrectAnswerIndexes {
			if idx < 0 || idx >= len(q.Options) {
				return nil, fmt.Errorf("question %q: answer index %d out of range (%d options)",
					q.ID, idx, len(q.Options))
			}
		}
		byID[q.ID] = q
	}

	return &Bank{questions: file.Questions, byID: byID}, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// IDs returns all question ids in source order. This is the universe handed
// to the due-set selector.
func (b *Bank) IDs() []string {
	ids := make([]string, len(b.questions))
	for i, q := range b.questions {
		ids[i] = q.ID
	}
	return ids
}

// Topics returns the distinct topics in the bank, sorted.
func (b *Bank) Topics() []string {
	seen := make(map[string]bool)
	var topics []string
	for _, q := range b.questions {
		if q.Topic != "" && !seen[q.Topic] {
			seen[q.Topic] = true
			topics = append(topics, q.Topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// FilterTopic returns the ids of questions in the given topic, in source
// order. An empty topic selects the whole bank.
func (b *Bank) FilterTopic(topic string) []string {
	if topic == "" {
		return b.IDs()
	}
	var ids []string
	for _, q := range b.questions {
		if q.Topic == topic {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// ByID looks up a question.
func (b *Bank) ByID(id string) (Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// Check reports whether the selected option indexes exactly match the
// question's correct answers, regardless of order.
func (q Question) Check(selected []int) bool {
	chosen := make(map[int]bool, len(selected))
	for _, idx := range selected {
		chosen[idx] = true
	}
	if len(chosen) != len(q.CorrectAnswerIndexes) {
		return false
	}
	for _, idx := range q.CorrectAnswerIndexes {
		if !chosen[idx] {
			return false
		}
	}
	return true
}
