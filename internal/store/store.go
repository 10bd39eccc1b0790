// Package store is the in-memory event store. All state lives for the
// duration of a session; there is no on-disk form. Ordering is insertion
// order; sorting is the engine's job at read time.
package store

import (
	"errors"

	"burnline/internal/domain"
)

var ErrNotFound = errors.New("event not found")

type Store struct {
	events []domain.Event
}

func New() *Store {
	return &Store{}
}

// Events returns a copy of the event list so callers cannot mutate the
// store behind its back.
func (s *Store) Events() []domain.Event {
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Len() int {
	return len(s.events)
}

// NextID returns max existing id + 1, starting at 1.
func (s *Store) NextID() int {
	max := 0
	for _, ev := range s.events {
		if ev.EventID() > max {
			max = ev.EventID()
		}
	}
	return max + 1
}

// Add assigns the event a fresh id and appends it, returning the stored
// copy.
func (s *Store) Add(ev domain.Event) domain.Event {
	ev = withID(ev, s.NextID())
	s.events = append(s.events, ev)
	return ev
}

// Remove deletes the event with the given id, or reports ErrNotFound. The
// initial-event protection rule lives with the engine, not here.
func (s *Store) Remove(id int) error {
	for i, ev := range s.events {
		if ev.EventID() == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ReplaceAll discards all prior events. Bulk imports have no merge
// semantics.
func (s *Store) ReplaceAll(events []domain.Event) {
	s.events = make([]domain.Event, len(events))
	copy(s.events, events)
}

func withID(ev domain.Event, id int) domain.Event {
	switch e := ev.(type) {
	case domain.CounterEvent:
		e.ID = id
		return e
	case domain.ActivityEvent:
		e.ID = id
		return e
	}
	return ev
}
