package shell

import (
	"os"

	"github.com/dubcc-csosim/csosim/internal/report"
)

// writeReport implements "report-util": snapshot the current scheduler
// state and append it to csopesy-log.txt in the working directory.
func (sh *Shell) writeReport() error {
	running, finished, err := sh.Emu.List()
	if err != nil {
		return err
	}

	stats := report.Stats{
		CPUUtilization: sh.Emu.Scheduler.CPUUtilization(),
		UsedCores:      sh.Emu.Scheduler.UsedCores(),
		AvailableCores: sh.Emu.Scheduler.AvailableCores(),
		Ticks:          sh.Emu.Scheduler.Ticks(),
		Residents:      sh.Emu.Scheduler.Residents(),
		Fragmentation:  sh.Emu.Scheduler.Fragmentation(),
	}

	f, err := os.OpenFile("csopesy-log.txt", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return report.Write(f, sh.Clock.Now(), stats, running, finished)
}
