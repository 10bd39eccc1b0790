package sheet_test

import (
	"errors"
	"testing"
	"time"

	"burnline/internal/domain"
	"burnline/internal/sheet"
)

func fixedParser() sheet.Parser {
	return sheet.Parser{Now: func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}}
}

func TestNormalizeDate(t *testing.T) {
	p := fixedParser()
	cases := []struct {
		in, want string
	}{
		{"2024-03-01", "2024-03-01"},
		{"01/03/2024", "2024-03-01"},
		{"10/Jun", "2024-06-10"},
		{"2/Jan", "2024-01-02"},
		{"2024/03/05", "2024-03-05"},
		{"Jan 2, 2024", "2024-01-02"},
		{"not a date", "2024-06-15"},
		{"", "2024-06-15"},
		{"99/99/2024", "2024-06-15"},
	}
	for _, c := range cases {
		if got := p.NormalizeDate(c.in); got != c.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDeriveHours(t *testing.T) {
	p := fixedParser()
	if got := p.DeriveHours(0, "08:30", "13:30"); got != 5.0 {
		t.Fatalf("08:30-13:30 = %v, want 5.0", got)
	}
	if got := p.DeriveHours(6, "08:30", "13:30"); got != 6 {
		t.Fatalf("explicit duration should win, got %v", got)
	}
	if got := p.DeriveHours(0, "13:30", "08:30"); got != 0 {
		t.Fatalf("negative span should resolve to 0, got %v", got)
	}
	if got := p.DeriveHours(0, "08:30", ""); got != 0 {
		t.Fatalf("missing end should resolve to 0, got %v", got)
	}
	if got := p.DeriveHours(0, "09:00", "09:20"); got != 0.33 {
		t.Fatalf("20 minutes = %v, want 0.33", got)
	}
}

func TestParseCounterTemplate(t *testing.T) {
	res, err := fixedParser().Parse(sheet.Template(domain.SchemaCounter))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.Schema != domain.SchemaCounter {
		t.Fatalf("schema = %s, want counter", res.Schema)
	}
	if len(res.Events) != 5 {
		t.Fatalf("events = %d, want 5", len(res.Events))
	}
	if len(res.Issues) != 0 {
		t.Fatalf("issues = %v, want none", res.Issues)
	}
	if res.InitialBacklog != 50 {
		t.Fatalf("initial backlog = %d, want 50", res.InitialBacklog)
	}
	first, ok := res.Events[0].(domain.CounterEvent)
	if !ok || first.Kind != domain.KindInitial {
		t.Fatalf("first event should be the initial row, got %+v", res.Events[0])
	}
	for i, ev := range res.Events {
		if ev.EventID() != i+1 {
			t.Errorf("event %d has id %d, want row order", i, ev.EventID())
		}
	}
}

func TestParseActivityTemplate(t *testing.T) {
	res, err := fixedParser().Parse(sheet.Template(domain.SchemaActivity))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.Schema != domain.SchemaActivity {
		t.Fatalf("schema = %s, want activity", res.Schema)
	}
	if len(res.Events) != 5 {
		t.Fatalf("events = %d, want 5", len(res.Events))
	}

	second := res.Events[1].(domain.ActivityEvent)
	if second.Hours != 5.0 {
		t.Errorf("08:30-13:30 activity = %v hours, want 5.0", second.Hours)
	}
	if second.Status != domain.StatusDone {
		t.Errorf("Concluído should map to done, got %s", second.Status)
	}
	if second.Responsible != "Bruno" {
		t.Errorf("responsible = %q, want Bruno", second.Responsible)
	}

	fourth := res.Events[3].(domain.ActivityEvent)
	if fourth.Hours != 6 {
		t.Errorf("explicit duration = %v, want 6", fourth.Hours)
	}
	if fourth.Phase != 2 {
		t.Errorf("phase = %d, want 2", fourth.Phase)
	}
	if fourth.Status != domain.StatusPending {
		t.Errorf("Pendente should map to pending, got %s", fourth.Status)
	}
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	raw := `# project worksheet
# exported 2024-06-01

Data,Tipo,Completados,Adicionados,Descrição
2024-01-01,inicial,0,10,seed

2024-02-01,completado,3,0,sprint
`
	res, err := fixedParser().Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(res.Events))
	}
}

func TestParseHeaderAliasesCaseInsensitive(t *testing.T) {
	raw := "DATE,TYPE,COMPLETED,ADDED,DESCRIPTION\n2024-01-01,initial,0,20,seed\n2024-01-10,completed,4,0,work\n"
	res, err := fixedParser().Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.InitialBacklog != 20 {
		t.Fatalf("initial backlog = %d, want 20", res.InitialBacklog)
	}
	ce := res.Events[1].(domain.CounterEvent)
	if ce.Kind != domain.KindCompleted || ce.Completed != 4 {
		t.Fatalf("unexpected event %+v", ce)
	}
}

func TestParseRowIssues(t *testing.T) {
	raw := `Data,Tipo,Completados,Adicionados,Descrição
,completado,5,0,missing date
2024-01-01,mystery,5,0,unknown type
2024-01-02,completado,0,0,moves nothing
2024-01-03,completado,-5,0,negative degrades to zero
2024-01-04,completado,7,0,fine
`
	res, err := fixedParser().Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(res.Events))
	}
	if len(res.Issues) != 4 {
		t.Fatalf("issues = %d, want 4: %v", len(res.Issues), res.Issues)
	}
}

func TestParseBadFieldValuesDegrade(t *testing.T) {
	raw := `Data,Tipo,Completados,Adicionados,Descrição
junk date,completado,abc,9,degrades
`
	res, err := fixedParser().Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	ce := res.Events[0].(domain.CounterEvent)
	if ce.Date != "2024-06-15" {
		t.Errorf("bad date should fall back to today, got %s", ce.Date)
	}
	if ce.Completed != 0 || ce.Added != 9 {
		t.Errorf("bad count should degrade to 0, got %+v", ce)
	}
}

func TestParseNoValidRows(t *testing.T) {
	raw := "Data,Tipo,Completados,Adicionados,Descrição\n,completado,1,0,no date\n"
	_, err := fixedParser().Parse(raw)
	if !errors.Is(err, sheet.ErrNoRows) {
		t.Fatalf("want ErrNoRows, got %v", err)
	}
}

func TestParseUnrecognizedHeader(t *testing.T) {
	if _, err := fixedParser().Parse("foo,bar\n1,2\n"); err == nil {
		t.Fatal("expected header error")
	}
	if _, err := fixedParser().Parse(""); err == nil {
		t.Fatal("expected empty worksheet error")
	}
}

func TestParseInitialLastSeenWins(t *testing.T) {
	raw := `Data,Tipo,Completados,Adicionados,Descrição
2024-01-01,inicial,0,10,first seed
2024-01-05,inicial,0,30,replacement seed
`
	res, err := fixedParser().Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.InitialBacklog != 30 {
		t.Fatalf("initial backlog = %d, want last-seen 30", res.InitialBacklog)
	}
}

func TestParseInitialLastSeenIsChronological(t *testing.T) {
	raw := `Data,Tipo,Completados,Adicionados,Descrição
2024-03-01,inicial,0,40,late seed listed first
2024-01-01,inicial,0,10,early seed listed last
`
	res, err := fixedParser().Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.InitialBacklog != 40 {
		t.Fatalf("initial backlog = %d, want the chronologically last seed (40)", res.InitialBacklog)
	}
}

func TestFingerprint(t *testing.T) {
	a := sheet.Fingerprint([]byte("same"))
	b := sheet.Fingerprint([]byte("same"))
	c := sheet.Fingerprint([]byte("different"))
	if a != b {
		t.Fatal("fingerprint should be deterministic")
	}
	if a == c {
		t.Fatal("fingerprints of different content should differ")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	p := fixedParser()
	res, err := p.Parse(sheet.Template(domain.SchemaCounter))
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	again, err := p.Parse(sheet.Write(domain.SchemaCounter, res.Events))
	if err != nil {
		t.Fatalf("parse written sheet: %v", err)
	}
	if len(again.Events) != len(res.Events) {
		t.Fatalf("round trip lost events: %d -> %d", len(res.Events), len(again.Events))
	}
	if again.InitialBacklog != res.InitialBacklog {
		t.Fatalf("round trip changed initial backlog: %d -> %d", res.InitialBacklog, again.InitialBacklog)
	}
}

func TestWriteActivityKeepsLoggedDate(t *testing.T) {
	ev := domain.ActivityEvent{
		ID: 1, Date: "2024-01-10", Activity: "Planejamento", Description: "Kickoff",
		Phase: 1, Responsible: "Ana", Status: domain.StatusDone, Hours: 2,
		LoggedAt: "2024-01-11",
	}
	res, err := fixedParser().Parse(sheet.Write(domain.SchemaActivity, []domain.Event{ev}))
	if err != nil {
		t.Fatalf("parse written sheet: %v", err)
	}
	got := res.Events[0].(domain.ActivityEvent)
	if got.LoggedAt != "2024-01-11" {
		t.Fatalf("round trip lost the logged date: %q", got.LoggedAt)
	}
	if got.Hours != 2 || got.Status != domain.StatusDone {
		t.Fatalf("round trip changed the event: %+v", got)
	}
}
