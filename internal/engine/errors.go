package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrLifelineUnavailable = errors.New("lifeline unavailable")
var ErrInvalidQuestionNumber = errors.New("invalid question number")
var ErrOptionRemoved = errors.New("option was removed by fifty-fifty")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrUnknownTeam = errors.New("unknown team")

// IllegalStateTransition reports an action attempted outside its legal
// state. It always names the state it was attempted from so a host-UI
// bug shows up in logs instead of being masked.
type IllegalStateTransition struct {
	State  string
	Action CommandType
}

func (e *IllegalStateTransition) Error() string {
	return fmt.Sprintf("illegal transition: cannot %s from %s", e.Action, e.State)
}

// ValidationError carries every failing rule, not just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// InvalidAnswerOption identifies which side of a comparison held a
// value outside A-D.
type InvalidAnswerOption struct {
	Side  string // "selected" or "correct"
	Value string
}

func (e *InvalidAnswerOption) Error() string {
	return fmt.Sprintf("invalid answer option %q (%s)", e.Value, e.Side)
}

// InvalidQuestionData rejects a structurally broken question before it
// can be loaded into the flow.
type InvalidQuestionData struct {
	QuestionID string
	Violations []string
}

func (e *InvalidQuestionData) Error() string {
	return fmt.Sprintf("invalid question %s: %s", e.QuestionID, strings.Join(e.Violations, "; "))
}
