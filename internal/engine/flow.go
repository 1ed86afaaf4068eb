package engine

import "slices"

// FlowState is the per-question lifecycle. Strictly ordered; the only
// way back is the flow reset at a question or team boundary.
type FlowState string

const (
	FlowNotLoaded       FlowState = "not_loaded"
	FlowLoadedHostOnly  FlowState = "loaded_host_only"
	FlowShownToPublic   FlowState = "shown_to_public"
	FlowAnswerSelected  FlowState = "answer_selected"
	FlowAnswerLocked    FlowState = "answer_locked"
	FlowAnswerValidated FlowState = "answer_validated"
)

// QuestionFlow is the transient state of the question currently in
// front of the active team. Filtered is nil until a 50/50 narrows the
// visible options. LifelineUsed is the one-lifeline-per-question gate
// and resets when the next question loads.
type QuestionFlow struct {
	State        FlowState    `json:"state"`
	Question     *Question    `json:"question,omitempty"`
	Selected     Option       `json:"selected,omitempty"`
	Filtered     []Option     `json:"filtered,omitempty"`
	LifelineUsed bool         `json:"lifelineUsed"`
	Result       *AnswerCheck `json:"result,omitempty"`
}

func newFlow() QuestionFlow {
	return QuestionFlow{State: FlowNotLoaded}
}

// visibleOptions returns the options still on the board, in display order.
func (f QuestionFlow) visibleOptions() []Option {
	if f.Filtered == nil {
		return AllOptions
	}
	return f.Filtered
}

func (f QuestionFlow) optionVisible(o Option) bool {
	return slices.Contains(f.visibleOptions(), o)
}
