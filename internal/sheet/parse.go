// Package sheet reads and writes the comma-separated worksheets the
// dashboard trades in. Parsing is deliberately lenient: bad field values
// degrade to defaults instead of rejecting the row, and cells are split on
// plain commas with no quoting support, matching the spreadsheet exports
// seen in the field.
package sheet

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"burnline/internal/domain"
)

// ErrNoRows is returned when a worksheet yields no valid events. Callers
// must leave their event store untouched in that case.
var ErrNoRows = errors.New("no valid rows")

// Issue describes a row that was skipped during parsing.
type Issue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of parsing one worksheet.
type Result struct {
	Schema domain.Schema  `json:"schema"`
	Events []domain.Event `json:"events"`
	Issues []Issue        `json:"issues,omitempty"`

	// InitialBacklog is the added count of the chronologically last
	// initial row (counter schema only), the same last-seen rule the
	// series seed applies; zero when no initial row was present.
	InitialBacklog int `json:"initial_backlog"`

	Fingerprint uuid.UUID `json:"fingerprint"`
}

// Parser converts raw worksheet text into events. Now is injected so date
// fallbacks are deterministic in tests.
type Parser struct {
	Now func() time.Time
}

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// aliases maps a canonical field to the lowercased header names that select
// it. Matching is case-insensitive; Portuguese and English spellings from
// the three worksheet generations are all accepted.
var aliases = map[string][]string{
	"date":        {"data", "date"},
	"type":        {"tipo", "type"},
	"completed":   {"completados", "completed"},
	"added":       {"adicionados", "added"},
	"description": {"descrição", "descricao", "description"},
	"phase":       {"fase", "phase", "etapa"},
	"activity":    {"atividade", "activity"},
	"responsible": {"responsável", "responsavel", "responsible"},
	"status":      {"status", "situação", "situacao"},
	"start":       {"início", "inicio", "start"},
	"end":         {"fim", "end", "término", "termino"},
	"hours":       {"duração", "duracao", "duration", "horas", "hours"},
	"logged":      {"registrado", "registro", "logged"},
}

// Parse converts worksheet text into events plus per-row issues. The header
// row decides the schema: a type column selects the counter schema, a
// description or activity column the activity schema. Row order becomes the
// id order.
func (p Parser) Parse(raw string) (Result, error) {
	res := Result{Fingerprint: Fingerprint([]byte(raw))}

	lines := rows(raw)
	if len(lines) == 0 {
		return res, errors.New("worksheet is empty")
	}

	cols := headerColumns(lines[0].cells)
	switch {
	case has(cols, "type"):
		res.Schema = domain.SchemaCounter
	case has(cols, "description") || has(cols, "activity"):
		res.Schema = domain.SchemaActivity
	default:
		return res, errors.New("unrecognized header row: need a type column or a description column")
	}
	if !has(cols, "date") {
		return res, errors.New("unrecognized header row: date column is required")
	}

	var initialDate string
	for _, ln := range lines[1:] {
		var (
			ev    domain.Event
			issue *Issue
		)
		if res.Schema == domain.SchemaCounter {
			ev, issue = p.counterRow(ln, cols, len(res.Events)+1)
			if ce, ok := ev.(domain.CounterEvent); ok && ce.Kind == domain.KindInitial {
				// Chronologically last wins; date ties fall to the
				// later row, matching the engine's stable sort.
				if initialDate == "" || ce.Date >= initialDate {
					initialDate = ce.Date
					res.InitialBacklog = ce.Added
				}
			}
		} else {
			ev, issue = p.activityRow(ln, cols, len(res.Events)+1)
		}
		if issue != nil {
			res.Issues = append(res.Issues, *issue)
			continue
		}
		res.Events = append(res.Events, ev)
	}

	if len(res.Events) == 0 {
		return res, ErrNoRows
	}
	return res, nil
}

// counterRow parses one counter-schema row. Initial rows carry the backlog
// size in the added column; other kinds must move at least one item.
func (p Parser) counterRow(ln row, cols map[string]int, id int) (domain.Event, *Issue) {
	date := cell(ln.cells, cols, "date")
	if date == "" {
		return nil, &Issue{Line: ln.number, Reason: "missing date"}
	}
	kind, ok := parseKind(cell(ln.cells, cols, "type"))
	if !ok {
		return nil, &Issue{Line: ln.number, Reason: "unknown event type " + strconv.Quote(cell(ln.cells, cols, "type"))}
	}

	ev := domain.CounterEvent{
		ID:          id,
		Date:        p.NormalizeDate(date),
		Kind:        kind,
		Completed:   count(cell(ln.cells, cols, "completed")),
		Added:       count(cell(ln.cells, cols, "added")),
		Phase:       phase(cell(ln.cells, cols, "phase")),
		Description: cell(ln.cells, cols, "description"),
	}
	if kind == domain.KindInitial {
		ev.Completed = 0
		if ev.Description == "" {
			ev.Description = "Initial backlog"
		}
		return ev, nil
	}
	if ev.Completed == 0 && ev.Added == 0 {
		return nil, &Issue{Line: ln.number, Reason: "row moves no items (completed and added are both zero)"}
	}
	return ev, nil
}

// activityRow parses one activity-schema row.
func (p Parser) activityRow(ln row, cols map[string]int, id int) (domain.Event, *Issue) {
	date := cell(ln.cells, cols, "date")
	if date == "" {
		return nil, &Issue{Line: ln.number, Reason: "missing date"}
	}
	desc := cell(ln.cells, cols, "description")
	if desc == "" {
		desc = cell(ln.cells, cols, "activity")
	}
	if desc == "" {
		return nil, &Issue{Line: ln.number, Reason: "missing description"}
	}

	ev := domain.ActivityEvent{
		ID:          id,
		Date:        p.NormalizeDate(date),
		Description: desc,
		Activity:    cell(ln.cells, cols, "activity"),
		Phase:       phase(cell(ln.cells, cols, "phase")),
		Responsible: cell(ln.cells, cols, "responsible"),
		Status:      parseStatus(cell(ln.cells, cols, "status")),
		Start:       cell(ln.cells, cols, "start"),
		End:         cell(ln.cells, cols, "end"),
	}
	ev.Hours = p.DeriveHours(hoursValue(cell(ln.cells, cols, "hours")), ev.Start, ev.End)
	if logged := cell(ln.cells, cols, "logged"); logged != "" {
		ev.LoggedAt = p.NormalizeDate(logged)
	}
	return ev, nil
}

type row struct {
	number int
	cells  []string
}

// rows splits raw text into trimmed cell slices, dropping blank lines and
// lines starting with the # comment marker before header detection.
func rows(raw string) []row {
	var out []row
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		cells := strings.Split(line, ",")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		out = append(out, row{number: i + 1, cells: cells})
	}
	return out
}

// headerColumns maps canonical field names to column indexes.
func headerColumns(cells []string) map[string]int {
	cols := make(map[string]int)
	for i, c := range cells {
		name := strings.ToLower(strings.TrimSpace(c))
		for field, names := range aliases {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, n := range names {
				if name == n {
					cols[field] = i
					break
				}
			}
		}
	}
	return cols
}

func has(cols map[string]int, field string) bool {
	_, ok := cols[field]
	return ok
}

func cell(cells []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func parseKind(s string) (domain.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inicial", "initial":
		return domain.KindInitial, true
	case "completado", "completed":
		return domain.KindCompleted, true
	case "adicionado", "added":
		return domain.KindAdded, true
	}
	return "", false
}

func parseStatus(s string) domain.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done", "concluído", "concluido", "feito":
		return domain.StatusDone
	case "in progress", "in_progress", "em andamento", "andamento":
		return domain.StatusInProgress
	case "cancelled", "canceled", "cancelado":
		return domain.StatusCancelled
	default:
		return domain.StatusPending
	}
}

// count parses a non-negative item count; anything unparseable or negative
// degrades to zero.
func count(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// phase parses a positive phase id, defaulting to 1.
func phase(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func hoursValue(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Fingerprint returns a deterministic id for raw worksheet bytes, used to
// skip recomputation when watched files are rewritten without changing.
func Fingerprint(data []byte) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, data)
}
