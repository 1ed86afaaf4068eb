package engine

import "fmt"

// Question is immutable once loaded for a turn. Options are keyed by
// letter; Correct is never included in the public projection.
type Question struct {
	ID      string            `json:"id"`
	Number  int               `json:"number"`
	Text    string            `json:"text"`
	Options map[Option]string `json:"options"`
	Correct Option            `json:"correct"`
}

// QuestionSet is an ordered collection of exactly ladder-size questions,
// assigned 1:1 to a team for the whole event.
type QuestionSet struct {
	SetID     string     `json:"setId"`
	SetName   string     `json:"setName"`
	Questions []Question `json:"questions"`
}

// ValidateQuestion checks the structural schema of a single question:
// non-empty text, all four options present and non-empty, a valid
// correct letter. Every violation is reported, not just the first.
func ValidateQuestion(q Question) error {
	var violations []string
	if q.Text == "" {
		violations = append(violations, "question text is empty")
	}
	if q.Number < 1 {
		violations = append(violations, fmt.Sprintf("question number %d is not positive", q.Number))
	}
	for _, o := range AllOptions {
		if q.Options[o] == "" {
			violations = append(violations, fmt.Sprintf("option %s is missing or empty", o))
		}
	}
	if _, ok := normalizeOption(string(q.Correct)); !ok {
		violations = append(violations, fmt.Sprintf("correct answer %q is not one of A-D", string(q.Correct)))
	}
	if len(violations) > 0 {
		return &InvalidQuestionData{QuestionID: q.ID, Violations: violations}
	}
	return nil
}

// ValidateQuestionSet checks a whole set against the configured ladder
// size: exact count and questions numbered 1..N in order, each one
// structurally valid.
func ValidateQuestionSet(set QuestionSet, size int) error {
	var violations []string
	if set.SetID == "" {
		violations = append(violations, "set id is empty")
	}
	if len(set.Questions) != size {
		violations = append(violations, fmt.Sprintf("set %s has %d questions, ladder needs %d", set.SetID, len(set.Questions), size))
	}
	for i, q := range set.Questions {
		if q.Number != i+1 {
			violations = append(violations, fmt.Sprintf("set %s question at position %d is numbered %d", set.SetID, i+1, q.Number))
		}
		if err := ValidateQuestion(q); err != nil {
			violations = append(violations, err.Error())
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
