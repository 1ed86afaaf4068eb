// Package store is the persisted-state collaborator: the engine core
// hands it whole snapshots synchronously per mutation and never manages
// transport, retries or offline queueing itself.
package store

import (
	"context"
	"errors"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one atomically-written game-state record for an event.
type Snapshot struct {
	Code    string
	Version int
	State   engine.State
}

type Store interface {
	// SaveSnapshot writes the full state record transactionally; a
	// reader never observes a partially applied mutation.
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshot(ctx context.Context, code string) (Snapshot, error)
}

// Watcher is the subscription hook for external observers such as a
// public display process. Not every backend supports it.
type Watcher interface {
	// Watch delivers each saved snapshot for the code until cancel is
	// called. Slow consumers miss intermediate versions, never get
	// partial ones.
	Watch(code string) (<-chan Snapshot, func())
}
