package engine

import (
	"errors"
	"testing"
)

func TestValidateAnswer(t *testing.T) {
	cases := []struct {
		name        string
		selected    string
		correct     string
		wantCorrect bool
		wantSide    string // non-empty means expect InvalidAnswerOption
	}{
		{name: "exact match", selected: "B", correct: "B", wantCorrect: true},
		{name: "mismatch", selected: "A", correct: "D", wantCorrect: false},
		{name: "lowercase selected normalizes", selected: "c", correct: "C", wantCorrect: true},
		{name: "whitespace selected normalizes", selected: " a ", correct: "A", wantCorrect: true},
		{name: "whitespace and case on both sides", selected: " d", correct: "d ", wantCorrect: true},
		{name: "selected out of range", selected: "E", correct: "A", wantSide: "selected"},
		{name: "selected empty", selected: "", correct: "A", wantSide: "selected"},
		{name: "correct out of range", selected: "A", correct: "X", wantSide: "correct"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			check, err := ValidateAnswer(tc.selected, tc.correct)
			if tc.wantSide != "" {
				var invalid *InvalidAnswerOption
				if !errors.As(err, &invalid) {
					t.Fatalf("want InvalidAnswerOption, got %v", err)
				}
				if invalid.Side != tc.wantSide {
					t.Fatalf("want side %q, got %q", tc.wantSide, invalid.Side)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if check.IsCorrect != tc.wantCorrect {
				t.Fatalf("validate(%q,%q): got %v, want %v", tc.selected, tc.correct, check.IsCorrect, tc.wantCorrect)
			}
		})
	}
}

func TestValidateAnswer_AllLettersSelfMatch(t *testing.T) {
	for _, o := range AllOptions {
		check, err := ValidateAnswer(string(o), string(o))
		if err != nil || !check.IsCorrect {
			t.Fatalf("validate(%s,%s): got (%v,%v), want correct", o, o, check.IsCorrect, err)
		}
	}
}
