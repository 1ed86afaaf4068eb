// Package questionbank loads question sets from disk. The engine
// re-validates on load; this is the first line of defense so a broken
// file is rejected before an event is created from it.
package questionbank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
)

type questionJSON struct {
	ID      string            `json:"id"`
	Number  int               `json:"number"`
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
	Correct string            `json:"correctAnswer"`
}

type setJSON struct {
	SetID     string         `json:"setId"`
	SetName   string         `json:"setName"`
	Questions []questionJSON `json:"questions"`
}

type fileJSON struct {
	QuestionSets []setJSON `json:"questionSets"`
}

// Load reads every question set from the file and validates each one
// against the ladder size. All violations across all sets are reported
// together.
func Load(path string, ladderSize int) ([]engine.QuestionSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var file fileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if len(file.QuestionSets) == 0 {
		return nil, &engine.ValidationError{Violations: []string{"question bank contains no sets"}}
	}

	sets := make([]engine.QuestionSet, 0, len(file.QuestionSets))
	var violations []string
	for _, sj := range file.QuestionSets {
		set := toEngineSet(sj)
		if err := engine.ValidateQuestionSet(set, ladderSize); err != nil {
			if verr, ok := err.(*engine.ValidationError); ok {
				violations = append(violations, verr.Violations...)
			} else {
				violations = append(violations, err.Error())
			}
			continue
		}
		sets = append(sets, set)
	}
	if len(violations) > 0 {
		return nil, &engine.ValidationError{Violations: violations}
	}
	return sets, nil
}

func toEngineSet(sj setJSON) engine.QuestionSet {
	qs := make([]engine.Question, 0, len(sj.Questions))
	for _, qj := range sj.Questions {
		options := make(map[engine.Option]string, len(qj.Options))
		for k, v := range qj.Options {
			options[engine.Option(k)] = v
		}
		qs = append(qs, engine.Question{
			ID:      qj.ID,
			Number:  qj.Number,
			Text:    qj.Text,
			Options: options,
			Correct: engine.Option(qj.Correct),
		})
	}
	return engine.QuestionSet{SetID: sj.SetID, SetName: sj.SetName, Questions: qs}
}
