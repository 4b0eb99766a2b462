package logging_test

import (
	"testing"

	"github.com/rs/zerolog"

	"jobmate/board-service/internal/logging"
)

func TestSetup_Levels(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, c := range cases {
		logging.Setup(c.in, false)
		if got := zerolog.GlobalLevel(); got != c.want {
			t.Errorf("Setup(%q) level = %v, want %v", c.in, got, c.want)
		}
	}
	logging.Setup("info", false)
}
