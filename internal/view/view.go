// Package view is the presentation adapter: it maps derived state onto
// go-pretty tables and display labels. Everything here is cosmetic; the
// numbers come from the engine untouched.
package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"burnline/internal/domain"
)

// KindLabel is the display name for a counter event kind.
func KindLabel(k domain.Kind) string {
	switch k {
	case domain.KindInitial:
		return "Initial"
	case domain.KindCompleted:
		return "Completed"
	case domain.KindAdded:
		return "Added"
	}
	return string(k)
}

// StatusLabel is the display name for an activity status.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusDone:
		return "Done"
	case domain.StatusInProgress:
		return "In progress"
	case domain.StatusPending:
		return "Pending"
	case domain.StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

func kindColors(k domain.Kind) text.Colors {
	switch k {
	case domain.KindCompleted:
		return text.Colors{text.FgGreen}
	case domain.KindAdded:
		return text.Colors{text.FgBlue}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

func statusColors(s domain.Status) text.Colors {
	switch s {
	case domain.StatusDone:
		return text.Colors{text.FgGreen}
	case domain.StatusInProgress:
		return text.Colors{text.FgBlue}
	case domain.StatusCancelled:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgYellow}
	}
}

// FormatDate renders a normalized YYYY-MM-DD date as dd/mm/yyyy, the format
// the dashboard always displayed. Anything unparseable passes through.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// RenderSummary writes the headline cards as a two-column table.
func RenderSummary(w io.Writer, name string, sum domain.Summary, view string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(name)
	tw.AppendRow(table.Row{"Total items", sum.TotalAdded})
	tw.AppendRow(table.Row{"Completed", sum.TotalCompleted})
	tw.AppendRow(table.Row{"Remaining", sum.Remaining})
	tw.AppendRow(table.Row{"Progress", fmt.Sprintf("%d%%", sum.Percentage)})
	if view == "hours" || sum.TotalHours > 0 {
		tw.AppendRow(table.Row{"Hours", fmt.Sprintf("%.2f", sum.TotalHours)})
		tw.AppendRow(table.Row{"Cost", fmt.Sprintf("%.2f", sum.Cost)})
	}
	tw.Render()
}

// RenderSeries writes the running-total series, one row per event.
func RenderSeries(w io.Writer, series []domain.SeriesPoint, view string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if view == "hours" {
		tw.AppendHeader(table.Row{"Date", "Hours", "Done hours", "Cost", "Description"})
		for _, p := range series {
			tw.AppendRow(table.Row{
				FormatDate(p.Date),
				fmt.Sprintf("%.2f", p.TotalHours),
				fmt.Sprintf("%.2f", p.DoneHours),
				fmt.Sprintf("%.2f", p.Cost),
				p.Description,
			})
		}
		tw.Render()
		return
	}
	tw.AppendHeader(table.Row{"Date", "Total", "Completed", "Remaining", "Description"})
	for _, p := range series {
		tw.AppendRow(table.Row{
			FormatDate(p.Date), p.TotalAdded, p.TotalCompleted, p.Remaining, p.Description,
		})
	}
	tw.Render()
}

// RenderPhases writes the per-phase rollup.
func RenderPhases(w io.Writer, phases []domain.PhaseStats, view string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if view == "hours" {
		tw.AppendHeader(table.Row{"Phase", "Items", "Done", "Hours", "Cost", "Progress"})
		for _, ps := range phases {
			tw.AppendRow(table.Row{
				phaseName(ps),
				ps.TotalAdded,
				ps.TotalCompleted,
				fmt.Sprintf("%.2f", ps.TotalHours),
				fmt.Sprintf("%.2f", ps.Cost),
				fmt.Sprintf("%d%%", ps.Percentage),
			})
		}
		tw.Render()
		return
	}
	tw.AppendHeader(table.Row{"Phase", "Total", "Completed", "Remaining", "Progress"})
	for _, ps := range phases {
		tw.AppendRow(table.Row{
			phaseName(ps), ps.TotalAdded, ps.TotalCompleted, ps.Remaining,
			fmt.Sprintf("%d%%", ps.Percentage),
		})
	}
	tw.Render()
}

// RenderPeople writes the per-responsible rollup.
func RenderPeople(w io.Writer, people []domain.ResponsibleStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Responsible", "Activities", "Done", "In progress", "Pending", "Hours", "Cost", "Progress"})
	for _, rs := range people {
		tw.AppendRow(table.Row{
			rs.Responsible, rs.Activities, rs.Done, rs.InProgress, rs.Pending,
			fmt.Sprintf("%.2f", rs.TotalHours),
			fmt.Sprintf("%.2f", rs.Cost),
			fmt.Sprintf("%d%%", rs.Percentage),
		})
	}
	tw.Render()
}

// RenderHistory writes the event list newest-first, the way the dashboard's
// history table always sorted it.
func RenderHistory(w io.Writer, events []domain.Event) {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EventDate() > sorted[j].EventDate()
	})

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Date", "Type", "Qty", "Phase", "Description"})
	for _, ev := range sorted {
		switch e := ev.(type) {
		case domain.CounterEvent:
			qty := e.Completed
			if e.Kind == domain.KindAdded || e.Kind == domain.KindInitial {
				qty = e.Added
			}
			tw.AppendRow(table.Row{
				e.ID, FormatDate(e.Date), kindColors(e.Kind).Sprint(KindLabel(e.Kind)),
				qty, e.Phase, e.Description,
			})
		case domain.ActivityEvent:
			tw.AppendRow(table.Row{
				e.ID, FormatDate(e.Date), statusColors(e.Status).Sprint(StatusLabel(e.Status)),
				fmt.Sprintf("%.2fh", e.Hours), e.Phase, e.Description,
			})
		}
	}
	tw.Render()
}

func phaseName(ps domain.PhaseStats) string {
	if ps.Label != "" {
		return ps.Label
	}
	return fmt.Sprintf("Phase %d", ps.Phase)
}
