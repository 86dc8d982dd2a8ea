// Package fleet computes service and document status, dashboard rows,
// analytics and alerts for a fleet of vehicles.
//
// Every function is a pure function of its inputs and an explicit "today".
// Missing or malformed data degrades to "no data" instead of an error.
package fleet

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

const (
	isoDate       = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// Days is a whole-day distance from today. Negative values are in the past.
type Days int

// NoDate stands for an absent or unparsable date (positive infinity).
const NoDate Days = math.MaxInt32

// Known reports whether d is a real distance rather than NoDate.
func (d Days) Known() bool {
	return d != NoDate
}

// MarshalJSON encodes NoDate as null.
func (d Days) MarshalJSON() ([]byte, error) {
	if d == NoDate {
		return []byte("null"), nil
	}
	return json.Marshal(int(d))
}

// UnmarshalJSON decodes null as NoDate.
func (d *Days) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NoDate
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Days(n)
	return nil
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date it names.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(isoDate, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// midnight truncates t to its calendar date in UTC so that day arithmetic is
// immune to DST shifts in the caller's zone.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of whole days from today to dateISO. Both
// sides are compared at midnight, so the same calendar day yields 0.
func DaysUntil(dateISO string, today time.Time) Days {
	target, ok := parseDate(dateISO)
	if !ok {
		return NoDate
	}
	// time.Duration saturates beyond about 292 years
	return Days((midnight(target).Unix() - midnight(today).Unix()) / secondsPerDay)
}

// ProjectNextServiceDate adds months calendar months to lastISO using
// normalising month arithmetic (Jan 31 + 1 month rolls into March). It
// returns "" when lastISO cannot be parsed.
func ProjectNextServiceDate(lastISO string, months int) string {
	last, ok := parseDate(lastISO)
	if !ok {
		return ""
	}
	return midnight(last).AddDate(0, months, 0).Format(isoDate)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}
