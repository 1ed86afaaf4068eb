package types

import "github.com/hotseatlive/hotseat-backend/internal/engine"

// ClientMessage is what the host console sends over the socket. Type
// selects the engine command; the remaining fields are per-command
// payloads.
type ClientMessage struct {
	Type         string   `json:"type"`
	Name         string   `json:"name,omitempty"`         // RegisterTeam
	Participants []string `json:"participants,omitempty"` // RegisterTeam
	Contact      string   `json:"contact,omitempty"`      // RegisterTeam
	Answer       string   `json:"answer,omitempty"`       // SelectAnswer
}

// ServerMessage is either a versioned state snapshot, projected for the
// client's role, or an error for the command that just failed.
type ServerMessage struct {
	Type    string             `json:"type"` // "StateSnapshot" | "Error"
	Version int                `json:"version,omitempty"`
	Host    *engine.HostView   `json:"host,omitempty"`
	Public  *engine.PublicView `json:"public,omitempty"`
	Error   string             `json:"error,omitempty"`
}
