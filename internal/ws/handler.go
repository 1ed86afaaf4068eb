package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
	"github.com/hotseatlive/hotseat-backend/internal/hub"
	"github.com/hotseatlive/hotseat-backend/internal/session"
	"github.com/hotseatlive/hotseat-backend/internal/types"
)

// Handler upgrades a host-console or public-display connection and
// bridges it to the event's session actor. Public connections are
// read-only: their commands are rejected before reaching the engine.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		role := session.RolePublic
		if r.URL.Query().Get("role") == "host" {
			role = session.RoleHost
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := uuid.NewString()

		sess.Inbox() <- session.Join{ClientID: clientID, Role: role, Outbox: out}
		defer func() { sess.Inbox() <- session.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, Host: snap.Host, Public: snap.Public}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			if role != session.RoleHost {
				writeError(r.Context(), conn, "public connections are read-only")
				continue
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				writeError(r.Context(), conn, "unknown type")
				continue
			}

			cmdReply := make(chan error, 1)
			sess.Inbox() <- session.FromHost{Cmd: cmd, Reply: cmdReply}
			if err := <-cmdReply; err != nil {
				log.Debug("host command rejected",
					zap.String("event", code),
					zap.String("command", cm.Type),
					zap.Error(err))
				writeError(r.Context(), conn, err.Error())
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "RegisterTeam":
		return engine.Command{Type: engine.CmdRegisterTeam, Team: engine.Team{
			ID:           uuid.NewString(),
			Name:         m.Name,
			Participants: m.Participants,
			Contact:      m.Contact,
		}}, true
	case "InitializeGame":
		return engine.Command{Type: engine.CmdInitialize}, true
	case "StartGame":
		return engine.Command{Type: engine.CmdStartGame}, true
	case "LoadQuestion":
		return engine.Command{Type: engine.CmdLoadQuestion}, true
	case "ShowQuestion":
		return engine.Command{Type: engine.CmdShowQuestion}, true
	case "SelectAnswer":
		return engine.Command{Type: engine.CmdSelectAnswer, Answer: m.Answer}, true
	case "LockAnswer":
		return engine.Command{Type: engine.CmdLockAnswer}, true
	case "NextQuestion":
		return engine.Command{Type: engine.CmdNextQuestion}, true
	case "OfferLifeline":
		return engine.Command{Type: engine.CmdOfferLifeline}, true
	case "EliminateTeam":
		return engine.Command{Type: engine.CmdEliminateTeam}, true
	case "AdvanceTeam":
		return engine.Command{Type: engine.CmdAdvanceTeam}, true
	case "UseFiftyFifty":
		return engine.Command{Type: engine.CmdUseFiftyFifty}, true
	case "ActivatePhoneAFriend":
		return engine.Command{Type: engine.CmdActivatePhone}, true
	case "StartPhoneTimer":
		return engine.Command{Type: engine.CmdStartPhoneTimer, Now: time.Now()}, true
	case "ResumePhone":
		return engine.Command{Type: engine.CmdResumePhone}, true
	case "UninitializeGame":
		return engine.Command{Type: engine.CmdUninitialize}, true
	default:
		return engine.Command{}, false
	}
}
