package scheduler

import (
	"time"

	"github.com/dubcc-csosim/csosim/internal/config"
	"github.com/dubcc-csosim/csosim/internal/process"
)

// ProcessView is a read-only, lock-free clone of a Process, safe to hold
// after the scheduler's mutex is released. Consumers never hold process
// references across lock boundaries.
type ProcessView struct {
	ID                   uint64
	Name                 string
	State                process.State
	Core                 int
	InstructionsExecuted uint64
	ProgramLength        int
	CompletionPercent    float64
	Log                  []string
	Variables            map[string]uint16
	CreationTime         time.Time
	FinishTime           time.Time
}

func cloneView(p *process.Process) ProcessView {
	logCopy := make([]string, len(p.Log))
	copy(logCopy, p.Log)
	varsCopy := make(map[string]uint16, len(p.Variables))
	for k, v := range p.Variables {
		varsCopy[k] = v
	}
	return ProcessView{
		ID:                   p.ID,
		Name:                 p.Name,
		State:                p.State,
		Core:                 p.Core,
		InstructionsExecuted: p.InstructionsExecuted,
		ProgramLength:        len(p.Program),
		CompletionPercent:    p.CompletionPercent(),
		Log:                  logCopy,
		Variables:            varsCopy,
		CreationTime:         p.CreationTime,
		FinishTime:           p.FinishTime,
	}
}

// AllProcesses returns a snapshot of every process ever created, in
// creation order.
func (s *Scheduler) AllProcesses() []ProcessView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProcessView, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, cloneView(s.processes[pid]))
	}
	return out
}

// RunningProcesses returns every non-Finished process (Ready, Running, or
// Waiting), grouped together under one "running" report section.
func (s *Scheduler) RunningProcesses() []ProcessView {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ProcessView
	for _, pid := range s.order {
		p := s.processes[pid]
		if p.State != process.Finished {
			out = append(out, cloneView(p))
		}
	}
	return out
}

// FinishedProcesses returns every Finished process.
func (s *Scheduler) FinishedProcesses() []ProcessView {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ProcessView
	for _, pid := range s.order {
		p := s.processes[pid]
		if p.State == process.Finished {
			out = append(out, cloneView(p))
		}
	}
	return out
}

// ProcessViewByName looks up a single process's snapshot by name.
func (s *Scheduler) ProcessViewByName(name string) (ProcessView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid, ok := s.byName[name]
	if !ok {
		return ProcessView{}, false
	}
	return cloneView(s.processes[pid]), true
}

// UsedCores reports how many cores are currently busy.
func (s *Scheduler) UsedCores() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedCoresLocked()
}

func (s *Scheduler) usedCoresLocked() int {
	n := 0
	for _, c := range s.cores {
		if c.busy {
			n++
		}
	}
	return n
}

// AvailableCores reports num_cpu minus used cores.
func (s *Scheduler) AvailableCores() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cores) - s.usedCoresLocked()
}

// Ticks reports the current tick counter.
func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// CPUUtilization reports used/num_cpu*100.
func (s *Scheduler) CPUUtilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cores) == 0 {
		return 0
	}
	return float64(s.usedCoresLocked()) / float64(len(s.cores)) * 100
}

// Residents reports how many processes currently hold a memory block.
func (s *Scheduler) Residents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alloc.Residents()
}

// Fragmentation reports the allocator's external fragmentation in bytes.
func (s *Scheduler) Fragmentation() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alloc.ExternalFragmentation()
}

// Config returns the frozen configuration the scheduler was initialized
// with.
func (s *Scheduler) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// ManualSnapshot forces a memory snapshot, independent of the RR quantum
// trigger; used by the "dump-state" shell verb.
func (s *Scheduler) ManualSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alloc.Snapshot()
}
