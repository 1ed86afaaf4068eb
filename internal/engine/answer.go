package engine

import "strings"

type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// AllOptions is the fixed display order for a four-option question.
var AllOptions = []Option{OptionA, OptionB, OptionC, OptionD}

func normalizeOption(raw string) (Option, bool) {
	switch o := Option(strings.ToUpper(strings.TrimSpace(raw))); o {
	case OptionA, OptionB, OptionC, OptionD:
		return o, true
	default:
		return "", false
	}
}

// AnswerCheck is the result of comparing a selected option against the
// correct one. Equality is decided on the normalized values only.
type AnswerCheck struct {
	IsCorrect bool   `json:"isCorrect"`
	Selected  Option `json:"selected"`
	Correct   Option `json:"-"`
}

// ValidateAnswer normalizes both sides (trim, uppercase) and compares.
// A value outside A-D fails with InvalidAnswerOption naming the side.
func ValidateAnswer(selected, correct string) (AnswerCheck, error) {
	sel, ok := normalizeOption(selected)
	if !ok {
		return AnswerCheck{}, &InvalidAnswerOption{Side: "selected", Value: selected}
	}
	cor, ok := normalizeOption(correct)
	if !ok {
		return AnswerCheck{}, &InvalidAnswerOption{Side: "correct", Value: correct}
	}
	return AnswerCheck{IsCorrect: sel == cor, Selected: sel, Correct: cor}, nil
}
