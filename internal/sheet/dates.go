package sheet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reISO    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDMY    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reDayMon = regexp.MustCompile(`^(\d{1,2})/([A-Za-z]{3})$`)
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// genericLayouts are tried, in order, after the explicit rules.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate reduces any supported date spelling to YYYY-MM-DD. Rules are
// applied in priority order: ISO pass-through, DD/MM/YYYY reorder, D/Mon
// with the current year, generic layouts, and finally today. The silent
// fallback to the processing date is deliberate: the dashboard accepts a
// wrong date over a rejected row.
func (p Parser) NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	today := p.now().Format("2006-01-02")
	if s == "" {
		return today
	}
	if reISO.MatchString(s) {
		return s
	}
	if m := reDMY.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}
	if m := reDayMon.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			day, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%04d-%02d-%02d", p.now().Year(), month, day)
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return today
}

// DeriveHours resolves an activity's duration. An explicit positive value
// wins; otherwise the end-start span in hours, rounded to two decimals.
// Spans that come out negative or cannot be computed resolve to zero.
func (p Parser) DeriveHours(explicit float64, start, end string) float64 {
	if explicit > 0 {
		return explicit
	}
	st, err := parseClock(start)
	if err != nil {
		return 0
	}
	en, err := parseClock(end)
	if err != nil {
		return 0
	}
	h := en.Sub(st).Hours()
	if h < 0 {
		return 0
	}
	return round2(h)
}

func parseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("15:04", s); err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
