package lifecycle_test

import (
	"testing"
	"time"

	"jobmate/board-service/internal/lifecycle"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// ── ParseState ─────────────────────────────────────────────────────────────

func TestParseState_ValidValues(t *testing.T) {
	cases := map[string]lifecycle.State{
		"Active": lifecycle.StateActive,
		"active": lifecycle.StateActive,
		"CLOSED": lifecycle.StateClosed,
		" closed ": lifecycle.StateClosed,
	}
	for in, want := range cases {
		got, err := lifecycle.ParseState(in)
		if err != nil {
			t.Errorf("ParseState(%q) returned unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseState(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseState_InvalidValue(t *testing.T) {
	for _, in := range []string{"", "open", "Expired"} {
		if _, err := lifecycle.ParseState(in); err == nil {
			t.Errorf("ParseState(%q) expected error, got nil", in)
		}
	}
}

// ── Evaluate ───────────────────────────────────────────────────────────────

func TestEvaluate_DaysLeft(t *testing.T) {
	cases := []struct {
		close time.Duration
		state lifecycle.State
		days  int
	}{
		{10 * 24 * time.Hour, lifecycle.StateActive, 10},
		{24 * time.Hour, lifecycle.StateActive, 1},
		{24*time.Hour + time.Millisecond, lifecycle.StateActive, 2},
		{time.Hour, lifecycle.StateActive, 1},
		{-time.Hour, lifecycle.StateClosed, 0},
		{-24 * time.Hour, lifecycle.StateClosed, -1},
		{-36 * time.Hour, lifecycle.StateClosed, -1},
	}
	for _, c := range cases {
		got := lifecycle.Evaluate(now.Add(c.close), now)
		if got.State != c.state || got.DaysLeft != c.days {
			t.Errorf("Evaluate(now%+v) = %+v, want {%s %d}", c.close, got, c.state, c.days)
		}
	}
}

func TestStatus_Label(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{5, "5 days"},
		{1, "1 day"},
		{0, "Expired"},
		{-3, "Expired"},
	}
	for _, c := range cases {
		st := lifecycle.Status{DaysLeft: c.days}
		if got := st.Label(); got != c.want {
			t.Errorf("Label(%d) = %q, want %q", c.days, got, c.want)
		}
	}
}
