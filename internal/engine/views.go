package engine

import "time"

// The engine serves two audiences: the host console, which may see
// everything, and the public display, which must never see a correct
// answer or an unshown question.

type TeamView struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Participants      []string   `json:"participants,omitempty"`
	Status            TeamStatus `json:"status"`
	CurrentPrize      int64      `json:"currentPrize"`
	QuestionsAnswered int        `json:"questionsAnswered"`
	Lifelines         Lifelines  `json:"lifelinesAvailable"`
}

type QuestionView struct {
	Number  int               `json:"number"`
	Text    string            `json:"text"`
	Options map[Option]string `json:"options"`
	Correct Option            `json:"correct,omitempty"` // host only
}

type FlowView struct {
	State    FlowState     `json:"state"`
	Question *QuestionView `json:"question,omitempty"`
	Selected Option        `json:"selected,omitempty"`
	Result   *AnswerCheck  `json:"result,omitempty"`
}

type PhoneView struct {
	TimerRunning bool      `json:"timerRunning"`
	StartedAt    time.Time `json:"startedAt"`
	DurationSec  int       `json:"durationSec"`
}

type HostView struct {
	Status       GameStatus `json:"status"`
	ActiveTeamID string     `json:"activeTeamId,omitempty"`
	Teams        []TeamView `json:"teams"`
	Queue        []string   `json:"queue,omitempty"`
	Ladder       Ladder     `json:"ladder"`
	Flow         FlowView   `json:"flow"`
	Phone        *PhoneView `json:"phone,omitempty"`
}

type PublicView struct {
	Status       GameStatus `json:"status"`
	ActiveTeamID string     `json:"activeTeamId,omitempty"`
	Teams        []TeamView `json:"teams"`
	Ladder       Ladder     `json:"ladder"`
	Flow         FlowView   `json:"flow"`
	Phone        *PhoneView `json:"phone,omitempty"`
}

func teamViews(s State) []TeamView {
	out := make([]TeamView, 0, len(s.TeamIDs))
	for _, id := range s.TeamIDs {
		t := s.Teams[id]
		out = append(out, TeamView{
			ID:                t.ID,
			Name:              t.Name,
			Participants:      t.Participants,
			Status:            t.Status,
			CurrentPrize:      t.CurrentPrize,
			QuestionsAnswered: t.QuestionsAnswered,
			Lifelines:         t.Lifelines,
		})
	}
	return out
}

func phoneView(s State) *PhoneView {
	if s.Phone == nil {
		return nil
	}
	// The anchor timestamp travels with every snapshot so a
	// reconnecting display recomputes remaining time locally.
	return &PhoneView{
		TimerRunning: s.Phone.TimerRunning,
		StartedAt:    s.Phone.StartedAt,
		DurationSec:  s.Phone.DurationSec,
	}
}

// visibleQuestionOptions applies the 50/50 filter to the option map.
func visibleQuestionOptions(f QuestionFlow) map[Option]string {
	opts := make(map[Option]string, len(f.visibleOptions()))
	for _, o := range f.visibleOptions() {
		opts[o] = f.Question.Options[o]
	}
	return opts
}

func HostViewOf(s State) HostView {
	flow := FlowView{State: s.Flow.State, Selected: s.Flow.Selected, Result: s.Flow.Result}
	if s.Flow.Question != nil {
		flow.Question = &QuestionView{
			Number:  s.Flow.Question.Number,
			Text:    s.Flow.Question.Text,
			Options: visibleQuestionOptions(s.Flow),
			Correct: s.Flow.Question.Correct,
		}
	}
	return HostView{
		Status:       s.Status,
		ActiveTeamID: s.ActiveTeamID,
		Teams:        teamViews(s),
		Queue:        s.Queue.Order,
		Ladder:       s.Ladder,
		Flow:         flow,
		Phone:        phoneView(s),
	}
}

func PublicViewOf(s State) PublicView {
	flow := FlowView{State: s.Flow.State}
	// The question only exists for the public once shown; the correct
	// answer never does, in any state.
	if s.Flow.Question != nil && s.Flow.State != FlowLoadedHostOnly {
		flow.Question = &QuestionView{
			Number:  s.Flow.Question.Number,
			Text:    s.Flow.Question.Text,
			Options: visibleQuestionOptions(s.Flow),
		}
		flow.Selected = s.Flow.Selected
		if s.Flow.Result != nil {
			flow.Result = &AnswerCheck{IsCorrect: s.Flow.Result.IsCorrect, Selected: s.Flow.Result.Selected}
		}
	}
	return PublicView{
		Status:       s.Status,
		ActiveTeamID: s.ActiveTeamID,
		Teams:        teamViews(s),
		Ladder:       s.Ladder,
		Flow:         flow,
		Phone:        phoneView(s),
	}
}
