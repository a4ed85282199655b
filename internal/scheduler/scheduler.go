// Package scheduler implements the tick-driven multi-core scheduler and
// the background batch process generator, consolidated under a single
// mutex guarding all shared state.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/dubcc-csosim/csosim/internal/clock"
	"github.com/dubcc-csosim/csosim/internal/config"
	"github.com/dubcc-csosim/csosim/internal/generator"
	"github.com/dubcc-csosim/csosim/internal/memory"
	"github.com/dubcc-csosim/csosim/internal/process"
)

// Sentinel errors surfaced to the shell.
var (
	ErrAlreadyExists  = errors.New("scheduler: a process with that name already exists")
	ErrNotFound       = errors.New("scheduler: process not found")
	ErrNotInitialized = errors.New("scheduler: emulator not initialized")
)

// core tracks one CPU core's assignment.
type core struct {
	busy             bool
	pid              uint64
	quantumRemaining int
}

// Scheduler owns the ready queue, per-core state, process registry, and
// memory allocator behind a single mutex.
type Scheduler struct {
	mu sync.Mutex

	initialized bool
	cfg         config.Config
	clock       clock.Clock
	logger      *slog.Logger
	rng         *rand.Rand

	// TickInterval governs both the scheduler loop and the generator
	// loop's cadence. Defaults to 100ms; tests shrink it.
	TickInterval time.Duration

	alloc *memory.Allocator

	processes map[uint64]*process.Process
	order     []uint64 // insertion order, for AllProcesses
	byName    map[string]uint64
	nextPID   uint64

	ready []uint64
	cores []core
	tick  uint64

	schedulerRunning bool
	schedulerCancel  context.CancelFunc
	schedulerWG      sync.WaitGroup

	generationRunning bool
	generationCancel  context.CancelFunc
	generationWG      sync.WaitGroup
	generatorTicks    int
	nextProcessSeq    int
}

// New constructs a Scheduler. It must be Initialize()'d before use.
func New(logger *slog.Logger, c clock.Clock, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		logger:       logger,
		clock:        c,
		rng:          rng,
		TickInterval: 100 * time.Millisecond,
		processes:    make(map[uint64]*process.Process),
		byName:       make(map[string]uint64),
	}
}

// Initialize records cfg, builds per-core state, and resets the tick
// counter. Idempotent if the scheduler loop has not yet been started.
func (s *Scheduler) Initialize(cfg config.Config, snapshotDir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedulerRunning {
		return
	}

	s.cfg = cfg
	s.cores = make([]core, cfg.NumCPU)
	s.tick = 0
	s.alloc = memory.New(cfg.MaxOverallMem, cfg.MemPerProc, s.clock, snapshotDir)
	s.initialized = true
}

func (s *Scheduler) requireInitialized() error {
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

// Start launches the scheduler loop as a goroutine, ticking every
// TickInterval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	if s.schedulerRunning {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.schedulerCancel = cancel
	s.schedulerRunning = true
	s.mu.Unlock()

	s.schedulerWG.Add(1)
	go s.schedulerLoop(ctx)
	return nil
}

// Stop signals the scheduler loop to halt and joins it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.schedulerRunning {
		s.mu.Unlock()
		return
	}
	cancel := s.schedulerCancel
	s.mu.Unlock()

	cancel()
	s.schedulerWG.Wait()

	s.mu.Lock()
	s.schedulerRunning = false
	s.mu.Unlock()
}

func (s *Scheduler) schedulerLoop(ctx context.Context) {
	defer s.schedulerWG.Done()
	ticker := time.NewTicker(s.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.runOneTick()
			s.mu.Unlock()
		}
	}
}

// StartGeneration launches the batch process generator loop independently
// of the scheduler loop.
func (s *Scheduler) StartGeneration() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	if s.generationRunning {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.generationCancel = cancel
	s.generationRunning = true
	s.generatorTicks = 0
	s.mu.Unlock()

	s.generationWG.Add(1)
	go s.generatorLoop(ctx)
	return nil
}

// StopGeneration halts the batch generator immediately at its next tick
// boundary; the scheduler loop continues draining the ready queue.
func (s *Scheduler) StopGeneration() {
	s.mu.Lock()
	if !s.generationRunning {
		s.mu.Unlock()
		return
	}
	cancel := s.generationCancel
	s.mu.Unlock()

	cancel()
	s.generationWG.Wait()

	s.mu.Lock()
	s.generationRunning = false
	s.mu.Unlock()
}

func (s *Scheduler) generatorLoop(ctx context.Context) {
	defer s.generationWG.Done()
	ticker := time.NewTicker(s.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.generatorTicks++
			if s.generatorTicks >= s.cfg.BatchProcessFreq {
				s.generatorTicks = 0
				s.nextProcessSeq++
				name := generateProcessName(s.nextProcessSeq)
				s.createProcessLocked(name)
			}
			s.mu.Unlock()
		}
	}
}

func generateProcessName(seq int) string {
	return "process" + strconv.Itoa(seq)
}

// CreateProcess generates a program and registers a new process, Ready,
// at the tail of the ready queue.
func (s *Scheduler) CreateProcess(name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	if _, exists := s.byName[name]; exists {
		return 0, ErrAlreadyExists
	}
	return s.createProcessLocked(name), nil
}

func (s *Scheduler) createProcessLocked(name string) uint64 {
	if _, exists := s.byName[name]; exists {
		// A "process<k>" name may already have been taken via
		// screen -s; the batch generator then skips this one.
		return 0
	}
	s.nextPID++
	pid := s.nextPID
	program := generator.Generate(s.rng, s.cfg.MinIns, s.cfg.MaxIns)
	p := process.New(pid, name, program, s.clock.Now())

	s.processes[pid] = p
	s.order = append(s.order, pid)
	s.byName[name] = pid
	s.ready = append(s.ready, pid)
	return pid
}

// FindProcess returns the process id for name, if registered.
func (s *Scheduler) FindProcess(name string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid, ok := s.byName[name]
	return pid, ok
}
