package engine

import (
	"fmt"
	"math/rand"
	"slices"
	"time"
)

type GameStatus string

const (
	GameNotStarted  GameStatus = "not_started"
	GameInitialized GameStatus = "initialized"
	GameActive      GameStatus = "active"
	GamePaused      GameStatus = "paused"
	GameCompleted   GameStatus = "completed"
)

type TeamStatus string

const (
	TeamWaiting    TeamStatus = "waiting"
	TeamActive     TeamStatus = "active"
	TeamEliminated TeamStatus = "eliminated"
	TeamCompleted  TeamStatus = "completed"
)

func (ts TeamStatus) Terminal() bool {
	return ts == TeamEliminated || ts == TeamCompleted
}

type Team struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Participants      []string   `json:"participants"`
	Contact           string     `json:"contact"`
	Status            TeamStatus `json:"status"`
	CurrentPrize      int64      `json:"currentPrize"`
	QuestionsAnswered int        `json:"questionsAnswered"`
	Lifelines         Lifelines  `json:"lifelinesAvailable"`
}

// State is the whole event aggregate: roster, question sets, ladder,
// play queue and the transient per-question flow. It is passed into
// every call explicitly; there is no ambient global.
type State struct {
	Status        GameStatus             `json:"status"`
	Ladder        Ladder                 `json:"ladder"`
	Teams         map[string]Team        `json:"teams"`
	TeamIDs       []string               `json:"teamIds"` // registration order
	Sets          map[string]QuestionSet `json:"sets"`
	SetIDs        []string               `json:"setIds"`
	Queue         PlayQueue              `json:"queue"`
	QueuePos      int                    `json:"queuePos"`
	ActiveTeamID  string                 `json:"activeTeamId"`
	Flow          QuestionFlow           `json:"flow"`
	Phone         *PhoneCall             `json:"phone,omitempty"`
	PhoneTimerSec int                    `json:"phoneTimerSec"`
}

type CommandType string

const (
	CmdRegisterTeam    CommandType = "RegisterTeam"
	CmdAddQuestionSet  CommandType = "AddQuestionSet"
	CmdInitialize      CommandType = "InitializeGame"
	CmdStartGame       CommandType = "StartGame"
	CmdLoadQuestion    CommandType = "LoadQuestion"
	CmdShowQuestion    CommandType = "ShowQuestion"
	CmdSelectAnswer    CommandType = "SelectAnswer"
	CmdLockAnswer      CommandType = "LockAnswer"
	CmdNextQuestion    CommandType = "NextQuestion"
	CmdOfferLifeline   CommandType = "OfferLifeline"
	CmdEliminateTeam   CommandType = "EliminateTeam"
	CmdAdvanceTeam     CommandType = "AdvanceTeam"
	CmdUseFiftyFifty   CommandType = "UseFiftyFifty"
	CmdActivatePhone   CommandType = "ActivatePhoneAFriend"
	CmdStartPhoneTimer CommandType = "StartPhoneTimer"
	CmdResumePhone     CommandType = "ResumePhone"
	CmdUninitialize    CommandType = "UninitializeGame"
)

type Command struct {
	Type   CommandType
	Team   Team        // RegisterTeam
	Set    QuestionSet // AddQuestionSet
	Answer string      // SelectAnswer, raw host input
	Now    time.Time   // StartPhoneTimer anchor
}

type EventType string

const (
	EvtTeamRegistered    EventType = "TeamRegistered"
	EvtQuestionSetAdded  EventType = "QuestionSetAdded"
	EvtGameInitialized   EventType = "GameInitialized"
	EvtGameStarted       EventType = "GameStarted"
	EvtTeamActivated     EventType = "TeamActivated"
	EvtQuestionLoaded    EventType = "QuestionLoaded"
	EvtQuestionShown     EventType = "QuestionShown"
	EvtAnswerSelected    EventType = "AnswerSelected"
	EvtAnswerLocked      EventType = "AnswerLocked"
	EvtAnswerValidated   EventType = "AnswerValidated"
	EvtPrizeAwarded      EventType = "PrizeAwarded"
	EvtQuestionAdvanced  EventType = "QuestionAdvanced"
	EvtLifelineOffered   EventType = "LifelineOffered"
	EvtFiftyFiftyApplied EventType = "FiftyFiftyApplied"
	EvtPhoneActivated    EventType = "PhoneActivated"
	EvtGamePaused        EventType = "GamePaused"
	EvtPhoneTimerStarted EventType = "PhoneTimerStarted"
	EvtGameResumed       EventType = "GameResumed"
	EvtTeamEliminated    EventType = "TeamEliminated"
	EvtTeamCompleted     EventType = "TeamCompleted"
	EvtGameCompleted     EventType = "GameCompleted"
	EvtGameUninitialized EventType = "GameUninitialized"
)

type Event struct {
	Type           EventType
	TeamID         string
	QuestionNumber int
	Option         Option
	Amount         int64
	Correct        bool
	Remaining      []Option
	StartedAt      time.Time
}

var queueRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// Apply runs one host command against the state. Guards run before any
// mutation, so a failed command leaves the state untouched; a
// successful one returns the implied events and the next state as one
// atomic step.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdRegisterTeam:
		return applyRegisterTeam(s, cmd.Team)
	case CmdAddQuestionSet:
		return applyAddQuestionSet(s, cmd.Set)
	case CmdInitialize:
		return applyInitialize(s)
	case CmdStartGame:
		return applyStartGame(s)
	case CmdLoadQuestion:
		return applyLoadQuestion(s)
	case CmdShowQuestion:
		return applyShowQuestion(s)
	case CmdSelectAnswer:
		return applySelectAnswer(s, cmd.Answer)
	case CmdLockAnswer:
		return applyLockAnswer(s)
	case CmdNextQuestion:
		return applyNextQuestion(s)
	case CmdOfferLifeline:
		return applyOfferLifeline(s)
	case CmdEliminateTeam:
		return applyEliminateTeam(s)
	case CmdAdvanceTeam:
		return applyAdvanceTeam(s)
	case CmdUseFiftyFifty:
		return applyUseFiftyFifty(s)
	case CmdActivatePhone:
		return applyActivatePhone(s)
	case CmdStartPhoneTimer:
		return applyStartPhoneTimer(s, cmd.Now)
	case CmdResumePhone:
		return applyResumePhone(s)
	case CmdUninitialize:
		return applyUninitialize(s)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyRegisterTeam(s State, t Team) ([]Event, State, error) {
	if s.Status != GameNotStarted {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdRegisterTeam}
	}
	var violations []string
	if t.ID == "" {
		violations = append(violations, "team id is empty")
	}
	if t.Name == "" {
		violations = append(violations, "team name is empty")
	}
	if _, exists := s.Teams[t.ID]; exists {
		violations = append(violations, fmt.Sprintf("team id %s already registered", t.ID))
	}
	if len(violations) > 0 {
		return nil, s, &ValidationError{Violations: violations}
	}

	t.Status = TeamWaiting
	t.CurrentPrize = 0
	t.QuestionsAnswered = 0
	t.Lifelines = Lifelines{PhoneAFriend: true, FiftyFifty: true}

	newState := s.replaceTeam(t)
	newState.TeamIDs = append(slices.Clone(s.TeamIDs), t.ID)
	return []Event{{Type: EvtTeamRegistered, TeamID: t.ID}}, newState, nil
}

func applyAddQuestionSet(s State, set QuestionSet) ([]Event, State, error) {
	if s.Status != GameNotStarted {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdAddQuestionSet}
	}
	if err := ValidateQuestionSet(set, s.Ladder.Size()); err != nil {
		return nil, s, err
	}
	if _, exists := s.Sets[set.SetID]; exists {
		return nil, s, &ValidationError{Violations: []string{fmt.Sprintf("set id %s already added", set.SetID)}}
	}

	newState := s
	newState.Sets = cloneSets(s.Sets)
	newState.Sets[set.SetID] = set
	newState.SetIDs = append(slices.Clone(s.SetIDs), set.SetID)
	return []Event{{Type: EvtQuestionSetAdded}}, newState, nil
}

func applyInitialize(s State) ([]Event, State, error) {
	if s.Status != GameNotStarted {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdInitialize}
	}

	teams := make([]Team, 0, len(s.TeamIDs))
	for _, id := range s.TeamIDs {
		teams = append(teams, s.Teams[id])
	}
	sets := make([]QuestionSet, 0, len(s.SetIDs))
	for _, id := range s.SetIDs {
		sets = append(sets, s.Sets[id])
	}

	queue, err := GeneratePlayQueue(teams, sets, queueRand)
	if err != nil {
		return nil, s, err
	}

	newState := s
	newState.Status = GameInitialized
	newState.Queue = queue
	newState.QueuePos = 0
	newState.Flow = newFlow()
	return []Event{{Type: EvtGameInitialized}}, newState, nil
}

func applyStartGame(s State) ([]Event, State, error) {
	if s.Status != GameInitialized {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdStartGame}
	}

	first := s.Teams[s.Queue.Order[0]]
	first.Status = TeamActive

	newState := s.replaceTeam(first)
	newState.Status = GameActive
	newState.QueuePos = 0
	newState.ActiveTeamID = first.ID
	newState.Flow = newFlow()
	return []Event{
		{Type: EvtGameStarted},
		{Type: EvtTeamActivated, TeamID: first.ID},
	}, newState, nil
}

func applyLoadQuestion(s State) ([]Event, State, error) {
	if s.Status != GameActive || s.ActiveTeamID == "" {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdLoadQuestion}
	}
	if s.Flow.State != FlowNotLoaded {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdLoadQuestion}
	}

	team := s.Teams[s.ActiveTeamID]
	number := team.QuestionsAnswered + 1
	if number > s.Ladder.Size() {
		return nil, s, &IllegalStateTransition{State: string(team.Status), Action: CmdLoadQuestion}
	}

	set, ok := s.Sets[s.Queue.Assignments[team.ID]]
	if !ok {
		return nil, s, fmt.Errorf("%w: no question set assigned to %s", ErrUnknownTeam, team.ID)
	}
	question := set.Questions[number-1]
	// The set was validated when added, but the flow still refuses to
	// load a structurally broken question.
	if err := ValidateQuestion(question); err != nil {
		return nil, s, err
	}

	newState := s
	newState.Flow = QuestionFlow{State: FlowLoadedHostOnly, Question: &question}
	return []Event{{Type: EvtQuestionLoaded, TeamID: team.ID, QuestionNumber: number}}, newState, nil
}

func applyShowQuestion(s State) ([]Event, State, error) {
	if s.Status != GameActive || s.Flow.State != FlowLoadedHostOnly {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdShowQuestion}
	}

	newState := s
	newState.Flow.State = FlowShownToPublic
	return []Event{{Type: EvtQuestionShown, TeamID: s.ActiveTeamID, QuestionNumber: s.Flow.Question.Number}}, newState, nil
}

func applySelectAnswer(s State, answer string) ([]Event, State, error) {
	if s.Status != GameActive {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdSelectAnswer}
	}
	// Re-selecting before lock is legal: the host corrects misclicks.
	if s.Flow.State != FlowShownToPublic && s.Flow.State != FlowAnswerSelected {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdSelectAnswer}
	}
	opt, ok := normalizeOption(answer)
	if !ok {
		return nil, s, &InvalidAnswerOption{Side: "selected", Value: answer}
	}
	if !s.Flow.optionVisible(opt) {
		return nil, s, fmt.Errorf("%w: %s", ErrOptionRemoved, opt)
	}

	newState := s
	newState.Flow.State = FlowAnswerSelected
	newState.Flow.Selected = opt
	return []Event{{Type: EvtAnswerSelected, TeamID: s.ActiveTeamID, Option: opt}}, newState, nil
}

// applyLockAnswer is the irrevocable commit point: validation runs
// immediately, and a correct answer's prize update lands in the same
// atomic step so the sync layer never observes a half-applied result.
func applyLockAnswer(s State) ([]Event, State, error) {
	if s.Status != GameActive || s.Flow.State != FlowAnswerSelected {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdLockAnswer}
	}

	check, err := ValidateAnswer(string(s.Flow.Selected), string(s.Flow.Question.Correct))
	if err != nil {
		return nil, s, err
	}

	team := s.Teams[s.ActiveTeamID]
	number := team.QuestionsAnswered + 1

	newState := s
	newState.Flow.State = FlowAnswerValidated
	newState.Flow.Result = &check

	events := []Event{
		{Type: EvtAnswerLocked, TeamID: team.ID, Option: check.Selected},
		{Type: EvtAnswerValidated, TeamID: team.ID, Correct: check.IsCorrect},
	}
	if check.IsCorrect {
		amount, err := s.Ladder.PrizeFor(number)
		if err != nil {
			return nil, s, err
		}
		team.CurrentPrize = amount
		team.QuestionsAnswered = number
		newState = newState.replaceTeam(team)
		events = append(events, Event{Type: EvtPrizeAwarded, TeamID: team.ID, QuestionNumber: number, Amount: amount})
	}
	return events, newState, nil
}

func applyNextQuestion(s State) ([]Event, State, error) {
	if s.Status != GameActive || s.Flow.State != FlowAnswerValidated || s.Flow.Result == nil || !s.Flow.Result.IsCorrect {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdNextQuestion}
	}

	team := s.Teams[s.ActiveTeamID]
	newState := s
	newState.Flow = newFlow()

	if team.QuestionsAnswered >= s.Ladder.Size() {
		team.Status = TeamCompleted
		newState = newState.replaceTeam(team)
		return []Event{{Type: EvtTeamCompleted, TeamID: team.ID, Amount: team.CurrentPrize}}, newState, nil
	}
	return []Event{{Type: EvtQuestionAdvanced, TeamID: team.ID, QuestionNumber: team.QuestionsAnswered + 1}}, newState, nil
}

// applyOfferLifeline is the host's rescue decision after a wrong
// answer: reopen the question so a remaining lifeline can be used.
// Only possible when no lifeline was spent on this question yet.
func applyOfferLifeline(s State) ([]Event, State, error) {
	if s.Status != GameActive || s.Flow.State != FlowAnswerValidated || s.Flow.Result == nil || s.Flow.Result.IsCorrect {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdOfferLifeline}
	}
	team := s.Teams[s.ActiveTeamID]
	if s.Flow.LifelineUsed || (!team.Lifelines.FiftyFifty && !team.Lifelines.PhoneAFriend) {
		return nil, s, ErrLifelineUnavailable
	}

	newState := s
	newState.Flow.State = FlowShownToPublic
	newState.Flow.Selected = ""
	newState.Flow.Result = nil
	return []Event{{Type: EvtLifelineOffered, TeamID: team.ID}}, newState, nil
}

func applyEliminateTeam(s State) ([]Event, State, error) {
	if s.Status != GameActive || s.Flow.State != FlowAnswerValidated || s.Flow.Result == nil || s.Flow.Result.IsCorrect {
		return nil, s, &IllegalStateTransition{State: string(s.Flow.State), Action: CmdEliminateTeam}
	}

	team := s.Teams[s.ActiveTeamID]
	// The final prize is the last milestone reached, not the amount the
	// team was playing for.
	guaranteed, err := s.Ladder.GuaranteedPrize(team.QuestionsAnswered)
	if err != nil {
		return nil, s, err
	}
	team.Status = TeamEliminated
	team.CurrentPrize = guaranteed

	newState := s.replaceTeam(team)
	newState.Flow = newFlow()
	return []Event{{Type: EvtTeamEliminated, TeamID: team.ID, Amount: guaranteed}}, newState, nil
}

func applyAdvanceTeam(s State) ([]Event, State, error) {
	if s.Status != GameActive {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdAdvanceTeam}
	}
	prev, ok := s.Teams[s.ActiveTeamID]
	if !ok || !prev.Status.Terminal() {
		return nil, s, &IllegalStateTransition{State: string(prev.Status), Action: CmdAdvanceTeam}
	}

	newState := s
	newState.Flow = newFlow()

	if s.QueuePos+1 >= len(s.Queue.Order) {
		newState.Status = GameCompleted
		newState.ActiveTeamID = ""
		return []Event{{Type: EvtGameCompleted}}, newState, nil
	}

	next := s.Teams[s.Queue.Order[s.QueuePos+1]]
	next.Status = TeamActive
	newState = newState.replaceTeam(next)
	newState.QueuePos = s.QueuePos + 1
	newState.ActiveTeamID = next.ID
	return []Event{{Type: EvtTeamActivated, TeamID: next.ID}}, newState, nil
}

// applyUseFiftyFifty consumes the flag and narrows the board in one
// atomic step; both land together or not at all.
func applyUseFiftyFifty(s State) ([]Event, State, error) {
	if !s.CanUseLifeline(LifelineFiftyFifty) {
		return nil, s, ErrLifelineUnavailable
	}

	visible := s.Flow.visibleOptions()
	if len(visible) != len(AllOptions) {
		return nil, s, fmt.Errorf("fifty-fifty: board already narrowed to %d options", len(visible))
	}
	remaining := fiftyFiftyRemaining(visible, s.Flow.Question.Correct)

	team := s.Teams[s.ActiveTeamID]
	team.Lifelines.FiftyFifty = false

	newState := s.replaceTeam(team)
	newState.Flow.Filtered = remaining
	newState.Flow.LifelineUsed = true
	// A selection that just vanished from the board is discarded.
	if newState.Flow.Selected != "" && !newState.Flow.optionVisible(newState.Flow.Selected) {
		newState.Flow.Selected = ""
		newState.Flow.State = FlowShownToPublic
	}
	return []Event{{Type: EvtFiftyFiftyApplied, TeamID: team.ID, Remaining: remaining}}, newState, nil
}

// applyActivatePhone consumes the flag and pauses the whole game, not
// just the question: no other action is legal while a call is out.
func applyActivatePhone(s State) ([]Event, State, error) {
	if !s.CanUseLifeline(LifelinePhoneAFriend) {
		return nil, s, ErrLifelineUnavailable
	}

	team := s.Teams[s.ActiveTeamID]
	team.Lifelines.PhoneAFriend = false

	newState := s.replaceTeam(team)
	newState.Flow.LifelineUsed = true
	newState.Status = GamePaused
	newState.Phone = &PhoneCall{DurationSec: s.PhoneTimerSec}
	return []Event{
		{Type: EvtPhoneActivated, TeamID: team.ID},
		{Type: EvtGamePaused},
	}, newState, nil
}

func applyStartPhoneTimer(s State, now time.Time) ([]Event, State, error) {
	if s.Status != GamePaused || s.Phone == nil || s.Phone.TimerRunning {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdStartPhoneTimer}
	}
	if now.IsZero() {
		now = time.Now()
	}

	newState := s
	newState.Phone = &PhoneCall{TimerRunning: true, StartedAt: now, DurationSec: s.Phone.DurationSec}
	return []Event{{Type: EvtPhoneTimerStarted, StartedAt: now}}, newState, nil
}

// applyResumePhone is shared by timer expiry and the host's manual
// resume. Whichever fires second finds no outstanding call and becomes
// a silent no-op, so the race cannot double-apply side effects.
func applyResumePhone(s State) ([]Event, State, error) {
	if s.Phone == nil {
		return nil, s, nil
	}

	newState := s
	newState.Phone = nil
	newState.Status = GameActive
	return []Event{{Type: EvtGameResumed}}, newState, nil
}

// applyUninitialize is the full event reset: play queue, assignments
// and flow are cleared, teams return to waiting with prizes and
// lifelines restored. Roster, question sets and ladder survive.
func applyUninitialize(s State) ([]Event, State, error) {
	if s.Status == GameNotStarted {
		return nil, s, &IllegalStateTransition{State: string(s.Status), Action: CmdUninitialize}
	}

	newState := s
	newState.Status = GameNotStarted
	newState.Queue = PlayQueue{}
	newState.QueuePos = 0
	newState.ActiveTeamID = ""
	newState.Flow = newFlow()
	newState.Phone = nil

	teams := make(map[string]Team, len(s.Teams))
	for id, t := range s.Teams {
		t.Status = TeamWaiting
		t.CurrentPrize = 0
		t.QuestionsAnswered = 0
		t.Lifelines = Lifelines{PhoneAFriend: true, FiftyFifty: true}
		teams[id] = t
	}
	newState.Teams = teams
	return []Event{{Type: EvtGameUninitialized}}, newState, nil
}
