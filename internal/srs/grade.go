package srs

import "fmt"

// Grade is the learner's self-reported recall quality after seeing the
// answer. It is not the same as objective correctness: a correct guess can
// still be graded Hard.
type Grade int

const (
	Again Grade = iota + 1 // forgot, relearn immediately
	Hard                   // recalled with significant difficulty
	Good                   // recalled with some effort
	Easy                   // recalled effortlessly
)

var gradeNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// Valid reports whether g is one of the four defined grades.
func (g Grade) Valid() bool {
	return g >= Again && g <= Easy
}

// String returns the grade's name, or "Grade(n)" for invalid values.
func (g Grade) String() string {
	if g.Valid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// ParseGrade converts the wire form (1=Again .. 4=Easy) into a Grade.
func ParseGrade(n int) (Grade, error) {
	g := Grade(n)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, n)
	}
	return g, nil
}
