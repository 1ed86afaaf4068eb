package engine

import (
	"fmt"
	"slices"
)

// Ladder is the ordered list of amounts a team climbs through, 1-indexed
// by question number. Milestone rungs are the safe havens: an eliminated
// team keeps the value of the highest milestone it passed.
type Ladder struct {
	Amounts    []int64 `json:"amounts"`
	Milestones []int   `json:"milestones"`
}

func NewLadder(amounts []int64, milestones []int) (Ladder, error) {
	var violations []string
	if len(amounts) == 0 {
		violations = append(violations, "ladder must not be empty")
	}
	for i, a := range amounts {
		if a <= 0 {
			violations = append(violations, fmt.Sprintf("ladder amount %d must be positive, got %d", i+1, a))
		}
	}
	for _, m := range milestones {
		if m < 1 || m > len(amounts) {
			violations = append(violations, fmt.Sprintf("milestone %d is outside the ladder", m))
		}
	}
	if len(violations) > 0 {
		return Ladder{}, &ValidationError{Violations: violations}
	}

	ms := slices.Clone(milestones)
	slices.Sort(ms)
	ms = slices.Compact(ms)
	return Ladder{Amounts: slices.Clone(amounts), Milestones: ms}, nil
}

func (l Ladder) Size() int { return len(l.Amounts) }

// PrizeFor returns the amount at stake for a question number.
// Number 0 is the defined no-progress base case; anything else outside
// 1..N is a caller bug and fails loudly.
func (l Ladder) PrizeFor(number int) (int64, error) {
	if number == 0 {
		return 0, nil
	}
	if number < 0 || number > len(l.Amounts) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuestionNumber, number)
	}
	return l.Amounts[number-1], nil
}

// NextPrize returns the amount for the question after current, or
// ok=false when current is the top of the ladder.
func (l Ladder) NextPrize(current int) (int64, bool, error) {
	if current < 0 || current > len(l.Amounts) {
		return 0, false, fmt.Errorf("%w: %d", ErrInvalidQuestionNumber, current)
	}
	if current == len(l.Amounts) {
		return 0, false, nil
	}
	return l.Amounts[current], true, nil
}

// GuaranteedPrize returns the amount at the highest milestone at or
// below the number of questions answered, or 0 when none was reached.
func (l Ladder) GuaranteedPrize(answered int) (int64, error) {
	if answered < 0 || answered > len(l.Amounts) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuestionNumber, answered)
	}
	prize := int64(0)
	for _, m := range l.Milestones {
		if m > answered {
			break
		}
		prize = l.Amounts[m-1]
	}
	return prize, nil
}

func (l Ladder) IsMilestone(number int) bool {
	return slices.Contains(l.Milestones, number)
}
