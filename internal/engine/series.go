package engine

import "burnline/internal/domain"

// ComputeSeries builds the chronological running-total series for the
// current phase filter. It is a single left-to-right fold over the sorted
// events: completed counts move items out of the backlog, added counts move
// them in, and activity hours accumulate alongside. Each emitted point
// carries the cumulative state after its event.
//
// The remaining accumulator is allowed to go negative internally (more
// completions recorded than items known); it is floored at zero only on the
// emitted point.
func ComputeSeries(events []domain.Event, s Settings) []domain.SeriesPoint {
	sorted := sortByDate(filterPhase(events, s.PhaseFilter))

	totalAdded, remaining := seedBacklog(sorted, s)
	totalCompleted := 0
	var totalHours, doneHours float64

	points := make([]domain.SeriesPoint, 0, len(sorted))
	for _, ev := range sorted {
		var desc string
		switch e := ev.(type) {
		case domain.CounterEvent:
			desc = e.Description
			switch e.Kind {
			case domain.KindCompleted:
				totalCompleted += e.Completed
				remaining -= e.Completed
			case domain.KindAdded:
				totalAdded += e.Added
				remaining += e.Added
			}
			// KindInitial is already in the seed; it emits a point
			// without moving the accumulators.
		case domain.ActivityEvent:
			desc = e.Description
			totalHours += e.Hours
			if e.Status == domain.StatusDone {
				doneHours += e.Hours
			}
		}
		points = append(points, domain.SeriesPoint{
			Date:           ev.EventDate(),
			TotalAdded:     totalAdded,
			TotalCompleted: totalCompleted,
			Remaining:      max(remaining, 0),
			TotalHours:     totalHours,
			DoneHours:      doneHours,
			Cost:           totalHours * s.HourlyRate,
			Description:    desc,
		})
	}
	return points
}

// seedBacklog sums the starting backlog for the filtered set: the last-seen
// initial event per phase in chronological order. When the set has no
// initial event at all, an unfiltered series starts from the configured
// initial backlog and a phase-filtered one from zero.
func seedBacklog(sorted []domain.Event, s Settings) (totalAdded, remaining int) {
	lastInitial := make(map[int]int)
	for _, ev := range sorted {
		if ce, ok := ev.(domain.CounterEvent); ok && ce.Kind == domain.KindInitial {
			lastInitial[ce.Phase] = ce.Added
		}
	}
	if len(lastInitial) == 0 {
		if s.PhaseFilter > 0 {
			return 0, 0
		}
		return s.InitialBacklog, s.InitialBacklog
	}
	seed := 0
	for _, n := range lastInitial {
		seed += n
	}
	return seed, seed
}
