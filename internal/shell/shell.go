// Package shell is the interactive REPL surface: a two-mode command loop
// (main menu / attached screen) over a single owned Emulator value, built
// on bufio.Scanner for input and an io.Writer prompt sink for output.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dubcc-csosim/csosim/internal/cliterm"
	"github.com/dubcc-csosim/csosim/internal/clock"
	"github.com/dubcc-csosim/csosim/internal/config"
	"github.com/dubcc-csosim/csosim/internal/emulator"
	"github.com/dubcc-csosim/csosim/internal/process"
)

// Shell drives the REPL against a single, explicitly owned Emulator value.
type Shell struct {
	Emu         *emulator.Emulator
	In          *bufio.Scanner
	Out         io.Writer
	ConfigPath  string
	SnapshotDir string
	Clock       clock.Clock

	initialized bool
	attached    string // process name, "" when at the main menu
}

// New constructs a Shell reading commands from r and writing prompts and
// output to w.
func New(emu *emulator.Emulator, r io.Reader, w io.Writer, configPath, snapshotDir string) *Shell {
	return &Shell{
		Emu:         emu,
		In:          bufio.NewScanner(r),
		Out:         w,
		ConfigPath:  configPath,
		SnapshotDir: snapshotDir,
		Clock:       clock.Real{},
	}
}

// tokenize splits a command line on whitespace. Quoting is not part of
// this shell's grammar.
func tokenize(line string) []string {
	return strings.Fields(line)
}

// Run prints the banner and drives the prompt loop until "exit" is typed
// at the main menu or the input stream closes.
func (sh *Shell) Run() {
	cliterm.Banner(sh.Out)
	fmt.Fprintln(sh.Out, "Type 'initialize' to start, or 'exit' to quit.")
	fmt.Fprintln(sh.Out)

	for {
		sh.prompt()
		if !sh.In.Scan() {
			return
		}
		line := sh.In.Text()

		if sh.attached != "" {
			if !sh.screenCommand(line) {
				return
			}
			continue
		}
		if !sh.mainCommand(line) {
			return
		}
	}
}

func (sh *Shell) prompt() {
	if sh.attached != "" {
		fmt.Fprintf(sh.Out, "[%s] >> ", sh.attached)
		return
	}
	fmt.Fprint(sh.Out, ">> ")
}

// mainCommand handles one main-menu command line. It returns false when
// the shell should exit.
func (sh *Shell) mainCommand(line string) bool {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return true
	}
	cmd := tokens[0]

	switch {
	case cmd == "exit":
		return false
	case cmd == "initialize":
		sh.handleInitialize()
	case !sh.initialized:
		fmt.Fprintln(sh.Out, "Error: system not initialized. Run 'initialize' first.")
	case cmd == "screen":
		sh.handleScreen(tokens[1:])
	case cmd == "scheduler-start":
		sh.handleSchedulerStart()
	case cmd == "scheduler-stop":
		sh.handleSchedulerStop()
	case cmd == "scheduler-generate":
		sh.handleGenerateStart()
	case cmd == "scheduler-generate-stop":
		sh.handleGenerateStop()
	case cmd == "report-util":
		sh.handleReportUtil()
	case cmd == "process-smi":
		sh.handleProcessSMI("")
	case cmd == "clear":
		cliterm.Clear(sh.Out)
		cliterm.Banner(sh.Out)
	default:
		fmt.Fprintf(sh.Out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(sh.Out, "Available commands: initialize, screen, scheduler-start, scheduler-stop, "+
			"scheduler-generate, scheduler-generate-stop, report-util, process-smi, clear, exit")
	}
	return true
}

// screenCommand handles one command line while attached to a process
// screen. It always returns true: "exit" detaches back to the main menu,
// and a closed input stream is handled by Run.
func (sh *Shell) screenCommand(line string) bool {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return true
	}
	cmd := tokens[0]

	switch cmd {
	case "exit":
		sh.attached = ""
		cliterm.Clear(sh.Out)
		cliterm.Banner(sh.Out)
	case "process-smi":
		sh.handleProcessSMI(sh.attached)
	case "dump-state":
		sh.handleDumpState()
	default:
		fmt.Fprintf(sh.Out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(sh.Out, "Available commands: process-smi, dump-state, exit")
	}
	return true
}

func (sh *Shell) handleInitialize() {
	cfg := config.Load(sh.ConfigPath, sh.Emu.Logger)
	sh.Emu.Initialize(cfg, sh.SnapshotDir)
	sh.initialized = true
	fmt.Fprintln(sh.Out, "Initialized.")
}

func (sh *Shell) handleScreen(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(sh.Out, "Usage: screen -s <name> | screen -r <name> | screen -ls")
		return
	}
	switch args[0] {
	case "-s":
		if len(args) < 2 {
			fmt.Fprintln(sh.Out, "Usage: screen -s <name>")
			return
		}
		name := args[1]
		if _, err := sh.Emu.CreateProcess(name); err != nil {
			if errors.Is(err, emulator.ErrAlreadyExists) {
				fmt.Fprintf(sh.Out, "Error: a process named %q already exists.\n", name)
				return
			}
			fmt.Fprintf(sh.Out, "Error: %v\n", err)
			return
		}
		sh.attached = name
		cliterm.Clear(sh.Out)
		fmt.Fprintf(sh.Out, "Attached to new process %q.\n", name)

	case "-r":
		if len(args) < 2 {
			fmt.Fprintln(sh.Out, "Usage: screen -r <name>")
			return
		}
		name := args[1]
		if _, err := sh.Emu.Attach(name); err != nil {
			fmt.Fprintf(sh.Out, "Error: no such process %q.\n", name)
			return
		}
		sh.attached = name
		cliterm.Clear(sh.Out)
		fmt.Fprintf(sh.Out, "Attached to %q.\n", name)

	case "-ls":
		sh.handleScreenList()

	default:
		fmt.Fprintln(sh.Out, "Usage: screen -s <name> | screen -r <name> | screen -ls")
	}
}

func (sh *Shell) handleScreenList() {
	running, finished, err := sh.Emu.List()
	if err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.Out, "CPU utilization: %.2f%%\n", sh.Emu.Scheduler.CPUUtilization())
	fmt.Fprintf(sh.Out, "Cores used: %d\n", sh.Emu.Scheduler.UsedCores())
	fmt.Fprintf(sh.Out, "Cores available: %d\n\n", sh.Emu.Scheduler.AvailableCores())

	fmt.Fprintln(sh.Out, "Running processes:")
	for _, p := range running {
		fmt.Fprintf(sh.Out, "%s (ID: %d) Core: %d %.0f%%\n", p.Name, p.ID, p.Core, p.CompletionPercent)
	}
	fmt.Fprintln(sh.Out, "\nFinished processes:")
	for _, p := range finished {
		fmt.Fprintf(sh.Out, "%s (ID: %d) Finished 100%%\n", p.Name, p.ID)
	}
}

func (sh *Shell) handleSchedulerStart() {
	if err := sh.Emu.StartScheduler(); err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	if err := sh.Emu.StartGeneration(); err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(sh.Out, "Scheduler started.")
}

func (sh *Shell) handleSchedulerStop() {
	sh.Emu.StopGeneration()
	if err := sh.Emu.StopScheduler(); err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(sh.Out, "Scheduler stopped.")
}

func (sh *Shell) handleGenerateStart() {
	if err := sh.Emu.StartGeneration(); err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(sh.Out, "Batch generation started.")
}

func (sh *Shell) handleGenerateStop() {
	sh.Emu.StopGeneration()
	fmt.Fprintln(sh.Out, "Batch generation stopped.")
}

func (sh *Shell) handleProcessSMI(name string) {
	view, err := sh.Emu.ProcessSMI(name)
	if err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.Out, "CPU utilization: %.2f%%\n", view.CPUUtilization)
	fmt.Fprintf(sh.Out, "Cores used: %d\n", view.UsedCores)
	fmt.Fprintf(sh.Out, "Cores available: %d\n", view.AvailableCores)
	fmt.Fprintf(sh.Out, "Ticks: %d\n", view.Ticks)
	fmt.Fprintf(sh.Out, "Memory residents: %d\n", view.Residents)
	fmt.Fprintf(sh.Out, "Fragmentation: %d\n", view.Fragmentation)

	if view.Process == nil {
		return
	}
	p := view.Process
	fmt.Fprintf(sh.Out, "\nProcess: %s\n", p.Name)
	fmt.Fprintf(sh.Out, "ID: %d\n", p.ID)
	if p.State == process.Finished {
		fmt.Fprintln(sh.Out, "Status: Finished!")
		return
	}
	fmt.Fprintf(sh.Out, "Current instruction line: %d / %d\n", p.InstructionsExecuted, p.ProgramLength)
	fmt.Fprintf(sh.Out, "State: %s\n", p.State)
}

func (sh *Shell) handleDumpState() {
	if err := sh.Emu.Scheduler.ManualSnapshot(); err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	out, err := sh.Emu.Dump(sh.attached)
	if err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(sh.Out, out)
}

func (sh *Shell) handleReportUtil() {
	if err := sh.writeReport(); err != nil {
		fmt.Fprintf(sh.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(sh.Out, "Report written to csopesy-log.txt")
}
