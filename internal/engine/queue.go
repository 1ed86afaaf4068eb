package engine

import (
	"fmt"
	"math/rand"
	"slices"
)

// PlayQueue is the randomized play order plus the 1:1 team-to-set
// assignment for the event. Generated once at initialize, consumed by
// the turn controller, cleared on uninitialize.
type PlayQueue struct {
	Order       []string          `json:"order"`
	Assignments map[string]string `json:"assignments"`
}

// GeneratePlayQueue shuffles the team list and, independently, the set
// list with Fisher-Yates, then assigns by position. Precondition
// failures (no teams, fewer sets than teams) are all reported together.
func GeneratePlayQueue(teams []Team, sets []QuestionSet, rng *rand.Rand) (PlayQueue, error) {
	var violations []string
	if len(teams) == 0 {
		violations = append(violations, "no teams registered")
	}
	if len(sets) < len(teams) {
		violations = append(violations, fmt.Sprintf("insufficient question sets: %d teams but only %d sets", len(teams), len(sets)))
	}
	if len(violations) > 0 {
		return PlayQueue{}, &ValidationError{Violations: violations}
	}

	order := make([]string, len(teams))
	for i, t := range teams {
		order[i] = t.ID
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	shuffledSets := slices.Clone(sets)
	rng.Shuffle(len(shuffledSets), func(i, j int) {
		shuffledSets[i], shuffledSets[j] = shuffledSets[j], shuffledSets[i]
	})

	assignments := make(map[string]string, len(order))
	for i, teamID := range order {
		assignments[teamID] = shuffledSets[i].SetID
	}
	return PlayQueue{Order: order, Assignments: assignments}, nil
}
