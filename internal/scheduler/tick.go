package scheduler

import (
	"time"

	"github.com/dubcc-csosim/csosim/internal/config"
	"github.com/dubcc-csosim/csosim/internal/process"
)

// runOneTick executes one scheduling tick. Caller must hold s.mu.
func (s *Scheduler) runOneTick() {
	s.tick++

	s.decrementWaiting()
	s.dispatch()
	snapshotDue := s.execute()

	if s.cfg.SchedulerKind == config.RR && snapshotDue {
		_ = s.alloc.Snapshot()
	}
}

// decrementWaiting ticks down every Waiting process's sleep countdown,
// moving it to Ready (tail of the queue) once it reaches zero.
func (s *Scheduler) decrementWaiting() {
	for _, pid := range s.order {
		p := s.processes[pid]
		if p.State != process.Waiting {
			continue
		}
		if p.SleepTicksRemaining > 0 {
			p.SleepTicksRemaining--
		}
		if p.SleepTicksRemaining == 0 {
			p.State = process.Ready
			s.ready = append(s.ready, pid)
		}
	}
}

// dispatch fills idle cores from the ready queue, in ascending core index,
// admitting each candidate into memory on first dispatch. A process that
// fails admission is pushed to the tail of the ready queue and dispatch
// stops for this tick rather than skipping ahead to a later process.
func (s *Scheduler) dispatch() {
	for i := range s.cores {
		if s.cores[i].busy {
			continue
		}
		if len(s.ready) == 0 {
			return
		}

		pid := s.ready[0]
		p := s.processes[pid]

		if !p.Resident {
			base, ok := s.alloc.TryAdmit(pid, p.Name)
			if !ok {
				// Starvation guard: requeue at tail, stop dispatching
				// this tick rather than skip past it to a later process.
				s.ready = append(s.ready[1:], pid)
				return
			}
			p.MemoryBase = base
			p.Resident = true
		}

		s.ready = s.ready[1:]
		p.State = process.Running
		p.Core = i
		s.cores[i].busy = true
		s.cores[i].pid = pid
		if s.cfg.SchedulerKind == config.RR {
			s.cores[i].quantumRemaining = s.cfg.QuantumCycles
		}
	}
}

// execute runs one instruction on every busy core, in ascending core
// index, and interprets the outcome. It reports whether a quantum
// boundary was crossed this tick (a completion or a preemption), which
// gates the RR snapshot trigger.
func (s *Scheduler) execute() (snapshotDue bool) {
	delay := time.Duration(s.cfg.DelaysPerExec) * time.Millisecond

	for i := range s.cores {
		if !s.cores[i].busy {
			continue
		}
		pid := s.cores[i].pid
		p := s.processes[pid]
		if p.State != process.Running {
			continue
		}

		outcome := p.ExecuteOneStep(i, delay, s.clock)

		switch outcome {
		case process.StepFinished:
			s.alloc.Release(pid)
			p.Resident = false
			p.Core = process.NoCore
			s.cores[i] = core{}
			snapshotDue = true

		case process.WentToSleep:
			p.Core = process.NoCore
			s.cores[i] = core{}

		case process.Continued:
			if s.cfg.SchedulerKind == config.RR {
				s.cores[i].quantumRemaining--
				if s.cores[i].quantumRemaining <= 0 {
					p.State = process.Ready
					p.Core = process.NoCore
					s.ready = append(s.ready, pid)
					s.cores[i] = core{}
					snapshotDue = true
				}
			}
		}
	}
	return snapshotDue
}
