// Package memory implements the repository interfaces on plain maps. It
// backs the test suites and the demo mode used when no DATABASE_URL is
// configured; write operations still behave like the real store, including
// feeding the change stream.
package memory

import (
	"sync"

	"github.com/traldis/court-queue/db"
	"github.com/traldis/court-queue/models"
)

type state struct {
	mu      sync.RWMutex
	events  map[string]models.Event
	players map[string]models.QueuePlayer
	teams   map[string]models.Team
	matches map[string]models.Match

	changes chan db.Change

	// failNext, when set, makes the next write fail with this error and
	// clears itself. Used by tests to exercise the reload-on-failure path.
	failNext error
}

// Store bundles in-memory repositories over one shared dataset.
type Store struct {
	state *state

	Events  *EventRepository
	Players *PlayerRepository
	Teams   *TeamRepository
	Matches *MatchRepository
}

func NewStore() *Store {
	st := &state{
		events:  make(map[string]models.Event),
		players: make(map[string]models.QueuePlayer),
		teams:   make(map[string]models.Team),
		matches: make(map[string]models.Match),
		changes: make(chan db.Change, 64),
	}
	return &Store{
		state:   st,
		Events:  &EventRepository{state: st},
		Players: &PlayerRepository{state: st},
		Teams:   &TeamRepository{state: st},
		Matches: &MatchRepository{state: st},
	}
}

// Changes exposes the store's change feed, mirroring db.Listener.
func (s *Store) Changes() <-chan db.Change { return s.state.changes }

func (s *Store) Close() error {
	close(s.state.changes)
	return nil
}

// SeedEvent inserts an event row directly, bypassing the change feed.
func (s *Store) SeedEvent(event models.Event) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.events[event.ID] = event
}

// FailNextWrite arms a one-shot write failure.
func (s *Store) FailNextWrite(err error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.failNext = err
}

// writeGate consumes an armed failure; callers hold the write lock.
func (st *state) writeGate() error {
	if st.failNext != nil {
		err := st.failNext
		st.failNext = nil
		return err
	}
	return nil
}

// notify never blocks; a saturated feed only delays a reload that the next
// notification triggers anyway.
func (st *state) notify(table, eventID string) {
	select {
	case st.changes <- db.Change{Table: table, EventID: eventID}:
	default:
	}
}
