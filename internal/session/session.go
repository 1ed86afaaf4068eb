// Package session runs one event's game as an actor: a single
// goroutine owns the engine state, so every host command is applied,
// persisted and broadcast as one ordered step.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
	"github.com/hotseatlive/hotseat-backend/internal/store"
)

type Role string

const (
	RoleHost   Role = "host"
	RolePublic Role = "public"
)

type Msg interface{ isSessionMsg() }

type FromHost struct {
	Cmd   engine.Command
	Reply chan error // optional; receives the apply outcome
}

func (FromHost) isSessionMsg() {}

type Join struct {
	ClientID string
	Role     Role
	Outbox   chan Snapshot
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// phoneExpired is the countdown firing; it races the host's manual
// resume and loses gracefully because resume is a no-op the second
// time.
type phoneExpired struct {
	startedAt time.Time
}

func (phoneExpired) isSessionMsg() {}

// Snapshot carries the projection matching the client's role; the
// public one never contains a correct answer.
type Snapshot struct {
	Version int
	Host    *engine.HostView
	Public  *engine.PublicView
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type client struct {
	role   Role
	outbox chan Snapshot
}

type Session struct {
	code       string
	inbox      chan Msg
	state      engine.State
	version    int
	clients    map[string]client
	store      store.Store
	log        *zap.Logger
	phoneTimer *time.Timer
	ctx        context.Context
	cancel     context.CancelFunc
}

func New(parent context.Context, code string, initial engine.State, st store.Store, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: 0,
		clients: make(map[string]client),
		store:   st,
		log:     log.With(zap.String("event", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = client{role: msg.Role, outbox: msg.Outbox}
				msg.Outbox <- s.snapshotFor(msg.Role)

			case Leave:
				delete(s.clients, msg.ClientID)

			case FromHost:
				s.apply(msg.Cmd, msg.Reply)

			case phoneExpired:
				// Stale fires are dropped: a resume or a fresh timer in
				// the meantime moved or cleared the anchor.
				call := s.state.Phone
				if call == nil || !call.TimerRunning || !call.StartedAt.Equal(msg.startedAt) {
					break
				}
				s.apply(engine.Command{Type: engine.CmdResumePhone}, nil)

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) apply(cmd engine.Command, reply chan error) {
	events, newState, err := engine.Apply(s.state, cmd)
	if err != nil {
		s.log.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		if reply != nil {
			reply <- err
		}
		return
	}
	// An idempotent no-op (the second resume in a race) must not bump
	// the version or re-notify observers.
	if len(events) == 0 {
		if reply != nil {
			reply <- nil
		}
		return
	}

	s.state = newState
	s.version++

	if err := s.store.SaveSnapshot(s.ctx, store.Snapshot{Code: s.code, Version: s.version, State: s.state}); err != nil {
		s.log.Warn("snapshot persist failed", zap.Int("version", s.version), zap.Error(err))
	}

	if engine.ContainsEvent(events, engine.EvtPhoneTimerStarted) {
		s.armPhoneTimer()
	}
	if engine.ContainsEvent(events, engine.EvtGameResumed) ||
		engine.ContainsEvent(events, engine.EvtGameUninitialized) {
		s.disarmPhoneTimer()
	}

	s.log.Info("command applied",
		zap.String("command", string(cmd.Type)),
		zap.Int("version", s.version),
		zap.String("status", string(s.state.Status)))

	s.broadcast()
	if reply != nil {
		reply <- nil
	}
}

func (s *Session) armPhoneTimer() {
	s.disarmPhoneTimer()

	call := s.state.Phone
	startedAt := call.StartedAt
	s.phoneTimer = time.AfterFunc(call.Remaining(time.Now()), func() {
		select {
		case s.inbox <- phoneExpired{startedAt: startedAt}:
		case <-s.ctx.Done():
		}
	})
}

func (s *Session) disarmPhoneTimer() {
	if s.phoneTimer != nil {
		s.phoneTimer.Stop()
		s.phoneTimer = nil
	}
}

func (s *Session) snapshotFor(role Role) Snapshot {
	snap := Snapshot{Version: s.version}
	switch role {
	case RoleHost:
		v := engine.HostViewOf(s.state)
		snap.Host = &v
	default:
		v := engine.PublicViewOf(s.state)
		snap.Public = &v
	}
	return snap
}

func (s *Session) broadcast() {
	// Projections are computed once per role, not per client.
	host := s.snapshotFor(RoleHost)
	public := s.snapshotFor(RolePublic)

	for id, c := range s.clients {
		snap := public
		if c.role == RoleHost {
			snap = host
		}
		select {
		case c.outbox <- snap:
		default:
			// Client is slow/full - drop them.
			close(c.outbox)
			delete(s.clients, id)
		}
	}
}

func (s *Session) shutdown() {
	s.disarmPhoneTimer()
	for id, c := range s.clients {
		close(c.outbox)
		delete(s.clients, id)
	}
	s.cancel()
}
