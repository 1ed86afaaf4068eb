package store

import (
	"context"
	"sync"
)

// MemoryStore keeps latest snapshots in process. It is the default
// backend for local events and the reference implementation for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	snaps    map[string]Snapshot
	watchers map[string]map[int]chan Snapshot
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps:    make(map[string]Snapshot),
		watchers: make(map[string]map[int]chan Snapshot),
	}
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	s.snaps[snap.Code] = snap
	subs := make([]chan Snapshot, 0, len(s.watchers[snap.Code]))
	for _, ch := range s.watchers[snap.Code] {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// watcher is behind; it keeps its place and catches the
			// next version
		}
	}
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, code string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[code]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) Watch(code string) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	if s.watchers[code] == nil {
		s.watchers[code] = make(map[int]chan Snapshot)
	}
	id := s.nextID
	s.nextID++
	s.watchers[code][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ws, ok := s.watchers[code]; ok {
			if _, ok := ws[id]; ok {
				delete(ws, id)
				close(ch)
			}
		}
	}
	return ch, cancel
}
