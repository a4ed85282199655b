// Package emulator is the external interface surface: the read-only
// query set the shell and report writer drive, plus the
// initialize/lifecycle entry points. It owns no scheduling logic itself;
// it is a thin, typed facade over internal/scheduler so that
// internal/shell never reaches into scheduler internals directly.
package emulator

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/k0kubun/pp/v3"

	"github.com/dubcc-csosim/csosim/internal/clock"
	"github.com/dubcc-csosim/csosim/internal/config"
	"github.com/dubcc-csosim/csosim/internal/process"
	"github.com/dubcc-csosim/csosim/internal/scheduler"
)

// Errors surfaced to the shell. These are the scheduler's sentinels
// re-exported under this package, so callers can errors.Is against either.
var (
	ErrAlreadyExists  = scheduler.ErrAlreadyExists
	ErrNotFound       = scheduler.ErrNotFound
	ErrNotInitialized = scheduler.ErrNotInitialized
)

// Emulator is the single owned value a shell holds.
type Emulator struct {
	Scheduler   *scheduler.Scheduler
	Logger      *slog.Logger
	initialized bool
}

// New constructs an Emulator with production dependencies (real clock,
// seeded RNG). Call Initialize before scheduling.
func New(logger *slog.Logger) *Emulator {
	return &Emulator{
		Scheduler: scheduler.New(logger, clock.Real{}, rand.New(rand.NewSource(time.Now().UnixNano()))),
		Logger:    logger,
	}
}

// Initialize loads configuration and prepares the scheduler for use.
func (e *Emulator) Initialize(cfg config.Config, snapshotDir string) {
	e.Scheduler.Initialize(cfg, snapshotDir)
	e.initialized = true
	e.Logger.Info("emulator initialized",
		"num_cpu", cfg.NumCPU, "scheduler", cfg.SchedulerKind, "quantum", cfg.QuantumCycles)
}

func (e *Emulator) requireInitialized() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	return nil
}

// CreateProcess implements "screen -s <name>".
func (e *Emulator) CreateProcess(name string) (scheduler.ProcessView, error) {
	if err := e.requireInitialized(); err != nil {
		return scheduler.ProcessView{}, err
	}
	if _, err := e.Scheduler.CreateProcess(name); err != nil {
		return scheduler.ProcessView{}, err
	}
	view, _ := e.Scheduler.ProcessViewByName(name)
	return view, nil
}

// Attach implements "screen -r <name>": permitted on Ready/Running/Waiting
// processes, rejected only for Finished ones.
func (e *Emulator) Attach(name string) (scheduler.ProcessView, error) {
	if err := e.requireInitialized(); err != nil {
		return scheduler.ProcessView{}, err
	}
	view, ok := e.Scheduler.ProcessViewByName(name)
	if !ok {
		return scheduler.ProcessView{}, ErrNotFound
	}
	if view.State == process.Finished {
		return scheduler.ProcessView{}, ErrNotFound
	}
	return view, nil
}

// List implements "screen -ls": all processes, running first then finished.
func (e *Emulator) List() (running, finished []scheduler.ProcessView, err error) {
	if err := e.requireInitialized(); err != nil {
		return nil, nil, err
	}
	return e.Scheduler.RunningProcesses(), e.Scheduler.FinishedProcesses(), nil
}

// StartScheduler implements "scheduler-start".
func (e *Emulator) StartScheduler() error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	return e.Scheduler.Start()
}

// StopScheduler implements "scheduler-stop".
func (e *Emulator) StopScheduler() error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	e.Scheduler.Stop()
	return nil
}

// StartGeneration / StopGeneration control the batch generator
// independently of the scheduler loop.
func (e *Emulator) StartGeneration() error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	return e.Scheduler.StartGeneration()
}

func (e *Emulator) StopGeneration() error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	e.Scheduler.StopGeneration()
	return nil
}

// ProcessSMIView is the compact digest "process-smi" reports as a
// distinct, single-screen summary alongside the file report.
type ProcessSMIView struct {
	CPUUtilization float64
	UsedCores      int
	AvailableCores int
	Ticks          uint64
	Residents      int
	Fragmentation  int64
	Process        *scheduler.ProcessView // set only when invoked inside a screen
}

// ProcessSMI implements the "process-smi" shell command. When name is
// non-empty it additionally returns that process's snapshot (including
// its full log and variables); name must refer to a non-Finished process or a
// Finished one still on record; process-smi does not reject Finished the
// way screen -r does, since it is read-only reporting.
func (e *Emulator) ProcessSMI(name string) (ProcessSMIView, error) {
	if err := e.requireInitialized(); err != nil {
		return ProcessSMIView{}, err
	}
	view := ProcessSMIView{
		CPUUtilization: e.Scheduler.CPUUtilization(),
		UsedCores:      e.Scheduler.UsedCores(),
		AvailableCores: e.Scheduler.AvailableCores(),
		Ticks:          e.Scheduler.Ticks(),
		Residents:      e.Scheduler.Residents(),
		Fragmentation:  e.Scheduler.Fragmentation(),
	}
	if name == "" {
		return view, nil
	}
	p, ok := e.Scheduler.ProcessViewByName(name)
	if !ok {
		return ProcessSMIView{}, ErrNotFound
	}
	view.Process = &p
	return view, nil
}

// Dump pretty-prints a process's full state (variables, log, completion)
// for diagnostics, using k0kubun/pp (colouring disabled) to render the
// structured state as a string instead of hand-rolled %+v.
func (e *Emulator) Dump(name string) (string, error) {
	if err := e.requireInitialized(); err != nil {
		return "", err
	}
	view, ok := e.Scheduler.ProcessViewByName(name)
	if !ok {
		return "", ErrNotFound
	}
	printer := pp.New()
	printer.SetColoringEnabled(false)
	return printer.Sprint(view), nil
}
