package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
	"github.com/hotseatlive/hotseat-backend/internal/store"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func mustApply(t *testing.T, s engine.State, cmd engine.Command) engine.State {
	t.Helper()
	_, next, err := engine.Apply(s, cmd)
	if err != nil {
		t.Fatalf("apply %s: %v", cmd.Type, err)
	}
	return next
}

// shownState has one active team with the first question on the board,
// a one-second phone timer so expiry tests stay fast.
func shownState(t *testing.T) engine.State {
	t.Helper()
	ladder, err := engine.NewLadder([]int64{100, 200, 300}, []int{2})
	if err != nil {
		t.Fatalf("ladder: %v", err)
	}
	s := engine.NewState(ladder)
	s.PhoneTimerSec = 1

	s = mustApply(t, s, engine.Command{Type: engine.CmdRegisterTeam, Team: engine.Team{ID: "team-1", Name: "Team One"}})

	qs := make([]engine.Question, 3)
	for i := range qs {
		qs[i] = engine.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Number: i + 1,
			Text:   fmt.Sprintf("question %d", i+1),
			Options: map[engine.Option]string{
				engine.OptionA: "alpha", engine.OptionB: "bravo",
				engine.OptionC: "charlie", engine.OptionD: "delta",
			},
			Correct: engine.OptionA,
		}
	}
	s = mustApply(t, s, engine.Command{Type: engine.CmdAddQuestionSet, Set: engine.QuestionSet{SetID: "set-1", SetName: "Set One", Questions: qs}})
	s = mustApply(t, s, engine.Command{Type: engine.CmdInitialize})
	s = mustApply(t, s, engine.Command{Type: engine.CmdStartGame})
	s = mustApply(t, s, engine.Command{Type: engine.CmdLoadQuestion})
	s = mustApply(t, s, engine.Command{Type: engine.CmdShowQuestion})
	return s
}

func newSession(t *testing.T, initial engine.State) (*Session, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, "TEST01", initial, store.NewMemoryStore(), zap.NewNop())
	return s, cancel
}

func TestSession_JoinDeliversRoleProjection(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	hostOut := make(chan Snapshot, 2)
	publicOut := make(chan Snapshot, 2)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: hostOut}
	s.Inbox() <- Join{ClientID: "p1", Role: RolePublic, Outbox: publicOut}

	hostSnap := recvSnapshot(t, hostOut, 100*time.Millisecond)
	if hostSnap.Host == nil || hostSnap.Public != nil {
		t.Fatalf("host client should get the host projection only")
	}
	if hostSnap.Host.Flow.Question.Correct != engine.OptionA {
		t.Fatalf("host projection lost the correct answer")
	}

	pubSnap := recvSnapshot(t, publicOut, 100*time.Millisecond)
	if pubSnap.Public == nil || pubSnap.Host != nil {
		t.Fatalf("public client should get the public projection only")
	}
	if pubSnap.Public.Flow.Question == nil {
		t.Fatalf("shown question missing from public projection")
	}
	if pubSnap.Public.Flow.Question.Correct != "" {
		t.Fatalf("public projection leaks the correct answer")
	}
}

func TestSession_CommandBroadcastsAndVersionIncrements(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	out := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: out}

	first := recvSnapshot(t, out, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}

	reply := make(chan error, 1)
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdSelectAnswer, Answer: "B"}, Reply: reply}
	if err := <-reply; err != nil {
		t.Fatalf("unexpected apply err: %v", err)
	}

	next := recvSnapshot(t, out, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after select: want version=1, got %d", next.Version)
	}
	if next.Host.Flow.Selected != engine.OptionB {
		t.Fatalf("selection missing from snapshot")
	}
}

func TestSession_RejectedCommandRepliesErrorNoBroadcast(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	out := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	reply := make(chan error, 1)
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdLockAnswer}, Reply: reply}
	if err := <-reply; err == nil {
		t.Fatalf("expected lock-before-select to fail")
	}

	recvNoSnapshot(t, out, 100*time.Millisecond)
}

func TestSession_DropSlowClient(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	out := make(chan Snapshot, 1)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: out}

	// outbox full after the join snapshot; next broadcast drops them
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdSelectAnswer, Answer: "C"}}

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
}

func TestSession_PhoneExpiryResumesExactlyOnce(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	out := make(chan Snapshot, 8)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdActivatePhone}}
	paused := recvSnapshot(t, out, 200*time.Millisecond)
	if paused.Host.Status != engine.GamePaused {
		t.Fatalf("want paused after activation, got %s", paused.Host.Status)
	}

	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdStartPhoneTimer}}
	_ = recvSnapshot(t, out, 200*time.Millisecond)

	// the one-second countdown expires and resumes the game
	resumed := recvSnapshot(t, out, 2*time.Second)
	if resumed.Host.Status != engine.GameActive {
		t.Fatalf("want active after expiry, got %s", resumed.Host.Status)
	}
	if resumed.Host.Phone != nil {
		t.Fatalf("call should be cleared after resume")
	}

	// no second resume broadcast follows
	recvNoSnapshot(t, out, 300*time.Millisecond)

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.Version != 3 {
		t.Fatalf("want exactly 3 versions (activate, timer, resume), got %d", view.Version)
	}
}

func TestSession_ManualResumeBeatsExpiry(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	out := make(chan Snapshot, 8)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdActivatePhone}}
	_ = recvSnapshot(t, out, 200*time.Millisecond)
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdStartPhoneTimer}}
	_ = recvSnapshot(t, out, 200*time.Millisecond)

	// manual resume lands before the countdown
	reply := make(chan error, 1)
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdResumePhone}, Reply: reply}
	if err := <-reply; err != nil {
		t.Fatalf("manual resume failed: %v", err)
	}
	resumed := recvSnapshot(t, out, 200*time.Millisecond)
	if resumed.Host.Status != engine.GameActive {
		t.Fatalf("want active after manual resume, got %s", resumed.Host.Status)
	}

	// when the stale expiry would have fired, nothing happens
	recvNoSnapshot(t, out, 1500*time.Millisecond)
}

func TestSession_PersistsEverySnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemoryStore()
	s := New(ctx, "EVT42", shownState(t), st, zap.NewNop())

	reply := make(chan error, 1)
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdSelectAnswer, Answer: "A"}, Reply: reply}
	if err := <-reply; err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	snap, err := st.LoadSnapshot(ctx, "EVT42")
	if err != nil {
		t.Fatalf("load persisted snapshot: %v", err)
	}
	if snap.Version != 1 || snap.State.Flow.Selected != engine.OptionA {
		t.Fatalf("persisted snapshot stale: v%d %+v", snap.Version, snap.State.Flow)
	}
}

func TestSession_ShutdownStopsPhoneTimer(t *testing.T) {
	s, cancel := newSession(t, shownState(t))
	defer cancel()

	out := make(chan Snapshot, 8)
	s.Inbox() <- Join{ClientID: "h1", Role: RoleHost, Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdActivatePhone}}
	_ = recvSnapshot(t, out, 200*time.Millisecond)
	s.Inbox() <- FromHost{Cmd: engine.Command{Type: engine.CmdStartPhoneTimer}}
	_ = recvSnapshot(t, out, 200*time.Millisecond)

	s.Inbox() <- Shutdown{}

	// no resume broadcast fires after shutdown
	recvNoSnapshot(t, out, 1500*time.Millisecond)
}
