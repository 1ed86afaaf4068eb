package engine

// NewState builds a fresh event aggregate around a ladder. Everything
// else (roster, sets, queue) arrives through commands.
func NewState(ladder Ladder) State {
	return State{
		Status:        GameNotStarted,
		Ladder:        ladder,
		Teams:         map[string]Team{},
		Sets:          map[string]QuestionSet{},
		Flow:          newFlow(),
		PhoneTimerSec: DefaultPhoneTimerSec,
	}
}

func cloneTeams(m map[string]Team) map[string]Team {
	out := make(map[string]Team, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSets(m map[string]QuestionSet) map[string]QuestionSet {
	out := make(map[string]QuestionSet, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// replaceTeam returns a state with one team swapped out, on a fresh
// map so earlier snapshots stay readable by concurrent observers.
func (s State) replaceTeam(t Team) State {
	newState := s
	newState.Teams = cloneTeams(s.Teams)
	newState.Teams[t.ID] = t
	return newState
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
