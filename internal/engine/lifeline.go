package engine

import (
	"math/rand"
	"time"
)

type LifelineKind string

const (
	LifelineFiftyFifty   LifelineKind = "fifty_fifty"
	LifelinePhoneAFriend LifelineKind = "phone_a_friend"
)

// Lifelines are the per-team consumable flags. Each may only ever go
// true -> false during an event; a full uninitialize restores them.
type Lifelines struct {
	PhoneAFriend bool `json:"phoneAFriend"`
	FiftyFifty   bool `json:"fiftyFifty"`
}

// DefaultPhoneTimerSec is the phone-a-friend countdown length.
const DefaultPhoneTimerSec = 180

// PhoneCall exists only while a phone-a-friend call is outstanding.
// The countdown is anchored to StartedAt wall-clock time so a
// reconnecting observer recomputes remaining time from now-StartedAt
// instead of trusting a continuously running process.
type PhoneCall struct {
	TimerRunning bool      `json:"timerRunning"`
	StartedAt    time.Time `json:"startedAt"`
	DurationSec  int       `json:"durationSec"`
}

// Remaining is pure over the supplied clock so it can be tested without
// real waits.
func (c *PhoneCall) Remaining(now time.Time) time.Duration {
	if c == nil || !c.TimerRunning {
		return 0
	}
	left := time.Duration(c.DurationSec)*time.Second - now.Sub(c.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// CanUseLifeline is the eligibility gate shared by both lifelines: a
// question must be loaded and visible to the public, the answer not yet
// locked, no lifeline spent on this question, and the team's own flag
// still available.
func (s State) CanUseLifeline(kind LifelineKind) bool {
	if s.Status != GameActive {
		return false
	}
	if s.Flow.State != FlowShownToPublic && s.Flow.State != FlowAnswerSelected {
		return false
	}
	if s.Flow.LifelineUsed {
		return false
	}
	team, ok := s.Teams[s.ActiveTeamID]
	if !ok {
		return false
	}
	switch kind {
	case LifelineFiftyFifty:
		return team.Lifelines.FiftyFifty
	case LifelinePhoneAFriend:
		return team.Lifelines.PhoneAFriend
	default:
		return false
	}
}

// keepWrongOption picks which one of the three incorrect options stays
// on the board; the other two are removed. Uniform over the three, and
// a package var so tests can pin the outcome.
var keepWrongOption = func(wrong []Option) Option {
	return wrong[rand.Intn(len(wrong))]
}

// fiftyFiftyRemaining returns the two options left after the filter:
// the correct one plus one incorrect survivor, in display order.
func fiftyFiftyRemaining(visible []Option, correct Option) []Option {
	wrong := make([]Option, 0, 3)
	for _, o := range visible {
		if o != correct {
			wrong = append(wrong, o)
		}
	}
	keep := keepWrongOption(wrong)

	remaining := make([]Option, 0, 2)
	for _, o := range AllOptions {
		if o == correct || o == keep {
			remaining = append(remaining, o)
		}
	}
	return remaining
}
