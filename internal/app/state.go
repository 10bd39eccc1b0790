// Package app owns the mutable session state: the event store, the active
// settings, and the derived views. There is exactly one writer, the
// interactive user, so mutations are plain method calls followed by a full
// recompute.
package app

import (
	"burnline/internal/config"
	"burnline/internal/domain"
	"burnline/internal/engine"
	"burnline/internal/sheet"
	"burnline/internal/store"
)

type State struct {
	Config   *config.Config
	Settings engine.Settings
	Store    *store.Store
	Parser   sheet.Parser
	Derived  domain.Derived
}

// NewState builds a session seeded from config, with an empty store and the
// derived views already computed.
func NewState(cfg *config.Config) *State {
	s := &State{
		Config:   cfg,
		Settings: engine.SettingsFromConfig(cfg),
		Store:    store.New(),
	}
	s.Recompute()
	return s
}

// Recompute re-derives all views from the current events and settings. The
// assignment is wholesale: callers never observe a half-updated Derived.
func (s *State) Recompute() {
	s.Derived = engine.Recompute(s.Store.Events(), s.Settings)
}

// ImportCSV parses worksheet text and, only on success, replaces the whole
// store. A parse failure or an empty result leaves prior events untouched.
// A counter-schema import also adopts the worksheet's initial backlog.
func (s *State) ImportCSV(raw string) (sheet.Result, error) {
	res, err := s.Parser.Parse(raw)
	if err != nil {
		return res, err
	}
	s.Store.ReplaceAll(res.Events)
	if res.Schema == domain.SchemaCounter && res.InitialBacklog > 0 {
		s.Settings.InitialBacklog = res.InitialBacklog
	}
	s.Recompute()
	return res, nil
}

// AddEvent appends a manual event and recomputes.
func (s *State) AddEvent(ev domain.Event) domain.Event {
	ev = s.Store.Add(ev)
	s.Recompute()
	return ev
}

// RemoveEvent deletes an event by id, refusing to drop seed initial events.
func (s *State) RemoveEvent(id int) error {
	if err := engine.CanRemove(s.Store.Events(), id); err != nil {
		return err
	}
	if err := s.Store.Remove(id); err != nil {
		return err
	}
	s.Recompute()
	return nil
}

// SetPhaseFilter switches the phase filter (zero for all) and recomputes.
func (s *State) SetPhaseFilter(phase int) {
	s.Settings.PhaseFilter = phase
	s.Recompute()
}

// SetView switches between the items and hours series views.
func (s *State) SetView(view string) {
	s.Settings.View = view
	s.Recompute()
}
