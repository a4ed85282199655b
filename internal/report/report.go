// Package report writes the human-readable utilization report
// (report-util.txt / csopesy-log.txt).
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dubcc-csosim/csosim/internal/clock"
	"github.com/dubcc-csosim/csosim/internal/scheduler"
)

// Stats is the numeric snapshot the report header needs.
type Stats struct {
	CPUUtilization float64
	UsedCores      int
	AvailableCores int
	Ticks          uint64
	Residents      int
	Fragmentation  int64
}

// Write renders the report as: timestamp, CPU utilization (two decimals),
// cores used, cores available, current ticks, memory residents,
// fragmentation, the running-processes list, then the finished-processes
// list, formatted "name (ID: n)" per line.
func Write(w io.Writer, now time.Time, stats Stats, running, finished []scheduler.ProcessView) error {
	if _, err := fmt.Fprintf(w, "Generated: %s\n", now.Format(clock.SnapshotTimestampFormat)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "CPU utilization: %.2f%%\n", stats.CPUUtilization); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cores used: %d\n", stats.UsedCores); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cores available: %d\n", stats.AvailableCores); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Current ticks: %d\n", stats.Ticks); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Memory residents: %d\n", stats.Residents); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Fragmentation: %d\n", stats.Fragmentation); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nRunning processes:"); err != nil {
		return err
	}
	for _, p := range running {
		if _, err := fmt.Fprintf(w, "%s (ID: %d)\n", p.Name, p.ID); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\nFinished processes:"); err != nil {
		return err
	}
	for _, p := range finished {
		if _, err := fmt.Fprintf(w, "%s (ID: %d)\n", p.Name, p.ID); err != nil {
			return err
		}
	}

	return nil
}
