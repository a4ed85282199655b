package report

import (
	"strings"
	"testing"
	"time"

	"github.com/dubcc-csosim/csosim/internal/scheduler"
)

func TestWriteFormat(t *testing.T) {
	now := time.Date(2026, 8, 6, 14, 30, 0, 0, time.UTC)
	stats := Stats{
		CPUUtilization: 50.5,
		UsedCores:      1,
		AvailableCores: 1,
		Ticks:          42,
		Residents:      2,
		Fragmentation:  4,
	}
	running := []scheduler.ProcessView{{ID: 1, Name: "p1"}}
	finished := []scheduler.ProcessView{{ID: 2, Name: "p2"}}

	var buf strings.Builder
	if err := Write(&buf, now, stats, running, finished); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"CPU utilization: 50.50%",
		"Cores used: 1",
		"Cores available: 1",
		"Current ticks: 42",
		"Memory residents: 2",
		"Fragmentation: 4",
		"Running processes:",
		"p1 (ID: 1)",
		"Finished processes:",
		"p2 (ID: 2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q; full output:\n%s", want, out)
		}
	}
}
