package domain

// Schema discriminates the two worksheet layouts burnline understands.
type Schema string

const (
	SchemaCounter  Schema = "counter"
	SchemaActivity Schema = "activity"
)

// Kind classifies counter-schema events.
type Kind string

const (
	KindInitial   Kind = "initial"
	KindCompleted Kind = "completed"
	KindAdded     Kind = "added"
)

// Status classifies activity-schema events.
type Status string

const (
	StatusDone       Status = "done"
	StatusInProgress Status = "in_progress"
	StatusPending    Status = "pending"
	StatusCancelled  Status = "cancelled"
)

// Event is either a CounterEvent or an ActivityEvent; the concrete type is
// the discriminant. Consumers type-switch for schema-specific fields.
type Event interface {
	EventID() int
	EventDate() string
	EventPhase() int
}

type CounterEvent struct {
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Kind        Kind   `json:"kind"`
	Completed   int    `json:"completed"`
	Added       int    `json:"added"`
	Phase       int    `json:"phase"`
	Description string `json:"description,omitempty"`
}

func (e CounterEvent) EventID() int      { return e.ID }
func (e CounterEvent) EventDate() string { return e.Date }
func (e CounterEvent) EventPhase() int   { return e.Phase }

type ActivityEvent struct {
	ID          int     `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Activity    string  `json:"activity,omitempty"`
	Phase       int     `json:"phase"`
	Responsible string  `json:"responsible,omitempty"`
	Status      Status  `json:"status"`
	Start       string  `json:"start,omitempty"`
	End         string  `json:"end,omitempty"`
	Hours       float64 `json:"hours"`
	LoggedAt    string  `json:"logged_at,omitempty"`
}

func (e ActivityEvent) EventID() int      { return e.ID }
func (e ActivityEvent) EventDate() string { return e.Date }
func (e ActivityEvent) EventPhase() int   { return e.Phase }

// SeriesPoint is one step of the running-total series. It carries the
// cumulative state after its event was applied, plus the event's own date
// and description for tooltips.
type SeriesPoint struct {
	Date           string  `json:"date"`
	TotalAdded     int     `json:"total_added"`
	TotalCompleted int     `json:"total_completed"`
	Remaining      int     `json:"remaining"`
	TotalHours     float64 `json:"total_hours"`
	DoneHours      float64 `json:"done_hours"`
	Cost           float64 `json:"cost"`
	Description    string  `json:"description,omitempty"`
}

type PhaseStats struct {
	Phase          int     `json:"phase"`
	Label          string  `json:"label,omitempty"`
	TotalAdded     int     `json:"total_added"`
	TotalCompleted int     `json:"total_completed"`
	Remaining      int     `json:"remaining"`
	Percentage     int     `json:"percentage"`
	Done           int     `json:"done"`
	InProgress     int     `json:"in_progress"`
	Pending        int     `json:"pending"`
	Cancelled      int     `json:"cancelled"`
	TotalHours     float64 `json:"total_hours"`
	Cost           float64 `json:"cost"`
}

type ResponsibleStats struct {
	Responsible string  `json:"responsible"`
	Activities  int     `json:"activities"`
	Done        int     `json:"done"`
	InProgress  int     `json:"in_progress"`
	Pending     int     `json:"pending"`
	Cancelled   int     `json:"cancelled"`
	Percentage  int     `json:"percentage"`
	TotalHours  float64 `json:"total_hours"`
	Cost        float64 `json:"cost"`
}

// Summary holds the dashboard headline numbers: the cumulative state at the
// end of the series, or the seeded backlog when the series is empty.
type Summary struct {
	TotalAdded     int     `json:"total_added"`
	TotalCompleted int     `json:"total_completed"`
	Remaining      int     `json:"remaining"`
	Percentage     int     `json:"percentage"`
	TotalHours     float64 `json:"total_hours"`
	Cost           float64 `json:"cost"`
}

// Derived is the full recomputed state handed to the presentation layer.
// It is replaced wholesale after every mutation, never patched.
type Derived struct {
	Series  []SeriesPoint      `json:"series"`
	Phases  []PhaseStats       `json:"phases"`
	People  []ResponsibleStats `json:"people"`
	Summary Summary            `json:"summary"`
}
