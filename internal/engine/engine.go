// Package engine derives the dashboard views from an event list and the
// current settings. Every function is a pure, deterministic transformation;
// callers re-run Recompute after each mutation and swap in the result
// wholesale.
package engine

import (
	"errors"
	"math"
	"sort"
	"strconv"

	"burnline/internal/config"
	"burnline/internal/domain"
)

// ErrProtected rejects removal of the seed initial event.
var ErrProtected = errors.New("initial backlog events cannot be removed")

// Settings is the dashboard configuration the engine derives views from.
// PhaseFilter zero means all phases; View is carried through to the
// presentation layer untouched.
type Settings struct {
	InitialBacklog int
	HourlyRate     float64
	PhaseFilter    int
	View           string
	PhaseLabels    map[int]string
}

// SettingsFromConfig seeds settings from burnline.yml.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := Settings{
		InitialBacklog: cfg.Backlog.Initial,
		HourlyRate:     cfg.Backlog.HourlyRate,
		View:           cfg.Defaults.View,
		PhaseLabels:    make(map[int]string, len(cfg.Phases.Catalog)),
	}
	if s.View == "" {
		s.View = "items"
	}
	for id, info := range cfg.Phases.Catalog {
		s.PhaseLabels[id] = info.Label
	}
	if p := cfg.Defaults.Phase; p != "" && p != "all" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			s.PhaseFilter = n
		}
	}
	return s
}

// Recompute derives the full dashboard state in one call. The returned
// value is complete or the call does not return at all; partial derived
// state never escapes.
func Recompute(events []domain.Event, s Settings) domain.Derived {
	series := ComputeSeries(events, s)
	return domain.Derived{
		Series:  series,
		Phases:  ComputePhaseStats(events, s),
		People:  ComputeResponsibleStats(events, s),
		Summary: Summarize(series, s),
	}
}

// Summarize reduces a series to the dashboard headline numbers: the last
// point's cumulative state, or the seeded backlog when nothing matched. An
// empty phase-filtered series seeds zero, mirroring seedBacklog; the
// configured backlog belongs to the whole project, not to one phase.
func Summarize(series []domain.SeriesPoint, s Settings) domain.Summary {
	var sum domain.Summary
	if s.PhaseFilter <= 0 {
		sum.TotalAdded = s.InitialBacklog
		sum.Remaining = s.InitialBacklog
	}
	if len(series) > 0 {
		last := series[len(series)-1]
		sum.TotalAdded = last.TotalAdded
		sum.TotalCompleted = last.TotalCompleted
		sum.Remaining = last.Remaining
		sum.TotalHours = last.TotalHours
		sum.Cost = last.Cost
	}
	sum.Percentage = pct(sum.TotalCompleted, sum.TotalAdded)
	return sum
}

// CanRemove enforces the counter-schema policy that the seed initial event
// survives manual deletion. Unknown ids pass; the store reports those.
func CanRemove(events []domain.Event, id int) error {
	for _, ev := range events {
		if ev.EventID() != id {
			continue
		}
		if ce, ok := ev.(domain.CounterEvent); ok && ce.Kind == domain.KindInitial {
			return ErrProtected
		}
		return nil
	}
	return nil
}

// pct is the integer completion percentage, rounded half up. Zero totals
// yield zero rather than an error.
func pct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// sortByDate orders events chronologically; ties keep their original
// relative order. Dates are normalized YYYY-MM-DD so string order is date
// order.
func sortByDate(events []domain.Event) []domain.Event {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EventDate() < sorted[j].EventDate()
	})
	return sorted
}

func filterPhase(events []domain.Event, phase int) []domain.Event {
	if phase <= 0 {
		return events
	}
	var out []domain.Event
	for _, ev := range events {
		if ev.EventPhase() == phase {
			out = append(out, ev)
		}
	}
	return out
}
