package engine

import (
	"sort"

	"burnline/internal/domain"
)

// Unassigned is the sentinel responsible label for activities without an
// owner.
const Unassigned = "unassigned"

// ComputePhaseStats rolls events up by phase. It always covers all events
// regardless of the current phase filter, so toggling the filter never
// changes other phases' numbers. Phases come from the data, plus any
// configured catalog phases, which stay visible with zeroed values.
func ComputePhaseStats(events []domain.Event, s Settings) []domain.PhaseStats {
	stats := make(map[int]*domain.PhaseStats)
	get := func(id int) *domain.PhaseStats {
		ps, ok := stats[id]
		if !ok {
			ps = &domain.PhaseStats{Phase: id, Label: s.PhaseLabels[id]}
			stats[id] = ps
		}
		return ps
	}
	for id := range s.PhaseLabels {
		get(id)
	}

	lastInitial := make(map[int]int)
	for _, ev := range sortByDate(events) {
		ps := get(ev.EventPhase())
		switch e := ev.(type) {
		case domain.CounterEvent:
			switch e.Kind {
			case domain.KindInitial:
				lastInitial[e.Phase] = e.Added
			case domain.KindCompleted:
				ps.TotalCompleted += e.Completed
			case domain.KindAdded:
				ps.TotalAdded += e.Added
			}
		case domain.ActivityEvent:
			ps.TotalAdded++
			ps.TotalHours += e.Hours
			switch e.Status {
			case domain.StatusDone:
				ps.Done++
				ps.TotalCompleted++
			case domain.StatusInProgress:
				ps.InProgress++
			case domain.StatusCancelled:
				ps.Cancelled++
			default:
				ps.Pending++
			}
		}
	}
	for id, n := range lastInitial {
		get(id).TotalAdded += n
	}

	out := make([]domain.PhaseStats, 0, len(stats))
	for _, ps := range stats {
		ps.Remaining = max(ps.TotalAdded-ps.TotalCompleted, 0)
		ps.Percentage = pct(ps.TotalCompleted, ps.TotalAdded)
		ps.Cost = ps.TotalHours * s.HourlyRate
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phase < out[j].Phase })
	return out
}

// ComputeResponsibleStats rolls activity events up by responsible party.
// Counter events contribute nothing here; they have no owner.
func ComputeResponsibleStats(events []domain.Event, s Settings) []domain.ResponsibleStats {
	stats := make(map[string]*domain.ResponsibleStats)
	for _, ev := range events {
		a, ok := ev.(domain.ActivityEvent)
		if !ok {
			continue
		}
		who := a.Responsible
		if who == "" {
			who = Unassigned
		}
		rs, ok := stats[who]
		if !ok {
			rs = &domain.ResponsibleStats{Responsible: who}
			stats[who] = rs
		}
		rs.Activities++
		rs.TotalHours += a.Hours
		switch a.Status {
		case domain.StatusDone:
			rs.Done++
		case domain.StatusInProgress:
			rs.InProgress++
		case domain.StatusCancelled:
			rs.Cancelled++
		default:
			rs.Pending++
		}
	}

	out := make([]domain.ResponsibleStats, 0, len(stats))
	for _, rs := range stats {
		rs.Percentage = pct(rs.Done, rs.Activities)
		rs.Cost = rs.TotalHours * s.HourlyRate
		out = append(out, *rs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].Responsible < out[j].Responsible
	})
	return out
}
