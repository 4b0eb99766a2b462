// Package lifecycle derives the open/closed state of a job posting from the
// wall clock.
//
//	openDate ────── Active ────── closeDate ────── Closed ──────►
//	                         (closeDate > now)   (closeDate <= now)
//
// Nothing is stored: the state is recomputed from closeDate on every read.
package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// State values as exposed in list views and the status sort field.
type State string

const (
	StateActive State = "Active"
	StateClosed State = "Closed"
)

// ExpiredLabel replaces the day count once a posting has no days left.
const ExpiredLabel = "Expired"

const day = int64(24 * time.Hour)

// Status is the derived lifecycle of one posting at one instant.
type Status struct {
	State    State `json:"status"`
	DaysLeft int   `json:"daysLeft"`
}

// Evaluate returns the status of a posting closing at closeDate, seen at now.
// Any positive gap, however small, is Active with at least one day left.
func Evaluate(closeDate, now time.Time) Status {
	diff := int64(closeDate.Sub(now))

	st := Status{State: StateClosed, DaysLeft: int(ceilDiv(diff, day))}
	if closeDate.After(now) {
		st.State = StateActive
	}
	return st
}

// IsActive reports whether the posting still accepts applications.
func (s Status) IsActive() bool { return s.State == StateActive }

// Expired reports whether list views should show ExpiredLabel.
func (s Status) Expired() bool { return s.DaysLeft <= 0 }

// Label is the days-left column of list views.
func (s Status) Label() string {
	switch {
	case s.Expired():
		return ExpiredLabel
	case s.DaysLeft == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", s.DaysLeft)
	}
}

// ParseState converts a raw filter value to a State, case-insensitively.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StateActive, nil
	case "closed":
		return StateClosed, nil
	}
	return "", fmt.Errorf("unknown posting status %q", s)
}

// ClosedBetween reports whether a posting closing at closeDate went from
// Active to Closed within the window (from, to].
func ClosedBetween(closeDate, from, to time.Time) bool {
	return Evaluate(closeDate, from).IsActive() && !Evaluate(closeDate, to).IsActive()
}

// ceilDiv rounds a/b towards +∞ for b > 0.
func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		// Go truncates towards zero, which is the ceiling for negatives.
		return a / b
	}
	return (a + b - 1) / b
}
