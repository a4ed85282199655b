// Package process holds the per-process state machine and instruction
// interpreter: variable store, log buffer, execution cursor, loop
// stack, and sleep countdown.
package process

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dubcc-csosim/csosim/internal/clock"
)

// State is one of the four process states.
type State uint8

const (
	Ready State = iota
	Running
	Waiting
	Finished
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Waiting:
		return "Waiting"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// MaxLoopDepth bounds nested FOR loops.
const MaxLoopDepth = 3

// LoopFrame is one entry of the bounded loop stack.
type LoopFrame struct {
	Start int // index of the FOR_START instruction
	Iter  int // number of the iteration in progress, 1-based
}

// NoCore is the "unassigned" core sentinel.
const NoCore = -1

// Process is the scheduling unit.
type Process struct {
	ID      uint64
	Name    string
	State   State
	Program []Instruction
	Cursor  int

	Variables map[string]uint16
	Log       []string

	SleepTicksRemaining int
	Core                int

	loopStack []LoopFrame

	CreationTime time.Time
	FinishTime   time.Time

	InstructionsExecuted uint64

	// MemoryBase is only meaningful while resident; Resident tracks whether
	// a base address has actually been assigned (0 is a legal base).
	MemoryBase int64
	Resident   bool
}

// New creates a freshly-generated process, Ready, with an empty variable
// store and log. cursor starts at 0 and core is unassigned.
func New(id uint64, name string, program []Instruction, now time.Time) *Process {
	return &Process{
		ID:           id,
		Name:         name,
		State:        Ready,
		Program:      program,
		Cursor:       0,
		Variables:    make(map[string]uint16),
		Core:         NoCore,
		CreationTime: now,
	}
}

// CompletionPercent reports the fraction of the program executed so far,
// as a percentage. A derived reporting value, never consulted by the
// scheduler.
func (p *Process) CompletionPercent() float64 {
	if len(p.Program) == 0 {
		return 0
	}
	return float64(p.InstructionsExecuted) / float64(len(p.Program)) * 100
}

// StepOutcome is the result of executing one instruction.
type StepOutcome uint8

const (
	Continued StepOutcome = iota
	WentToSleep
	StepFinished
)

func (o StepOutcome) String() string {
	switch o {
	case Continued:
		return "Continued"
	case WentToSleep:
		return "WentToSleep"
	case StepFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

func saturateU16(x int64) uint16 {
	if x < 0 {
		return 0
	}
	if x > 65535 {
		return 65535
	}
	return uint16(x)
}

// resolve looks up operand as a variable name first, falling back to a
// numeric literal, and to 0 if it parses as neither.
func (p *Process) resolve(operand string) uint16 {
	if v, ok := p.Variables[operand]; ok {
		return v
	}
	n, err := strconv.ParseInt(operand, 10, 64)
	if err != nil {
		return 0
	}
	return saturateU16(n)
}

// ExecuteOneStep executes exactly one instruction of a Running process.
// delay simulates the configured per-instruction execution delay and is
// applied inline after the instruction runs.
func (p *Process) ExecuteOneStep(core int, delay time.Duration, c clock.Clock) StepOutcome {
	if p.Cursor >= len(p.Program) {
		p.State = Finished
		p.FinishTime = c.Now()
		return StepFinished
	}

	inst := p.Program[p.Cursor]
	outcome := Continued

	switch inst.Kind {
	case KindPrint:
		line := fmt.Sprintf("(%s) Core:%d %s", c.Now().Format(clock.TimestampFormat), core, inst.Literal)
		p.Log = append(p.Log, line)
		p.Cursor++

	case KindDeclare:
		p.Variables[inst.Dest] = saturateU16(int64(inst.Imm))
		p.Cursor++

	case KindAdd:
		x := int64(p.resolve(inst.LHS))
		y := int64(p.resolve(inst.RHS))
		p.Variables[inst.Dest] = saturateU16(x + y)
		p.Cursor++

	case KindSubtract:
		x := int64(p.resolve(inst.LHS))
		y := int64(p.resolve(inst.RHS))
		diff := x - y
		if diff < 0 {
			diff = 0
		}
		p.Variables[inst.Dest] = saturateU16(diff)
		p.Cursor++

	case KindSleep:
		p.Cursor++
		if inst.SleepTicks != 0 {
			p.SleepTicksRemaining = int(inst.SleepTicks)
			p.State = Waiting
			p.InstructionsExecuted++
			if delay > 0 {
				time.Sleep(delay)
			}
			return WentToSleep
		}

	case KindForStart:
		if len(p.loopStack) < MaxLoopDepth {
			p.loopStack = append(p.loopStack, LoopFrame{Start: p.Cursor, Iter: 1})
		}
		// Overflow (depth already at MaxLoopDepth) is a no-op; cursor
		// still advances. FOR_END below jumps straight to the loop body
		// on repeat, so a live FOR_START is never revisited.
		p.Cursor++

	case KindForEnd:
		if top := p.loopTop(); top != nil {
			repeat := p.Program[top.Start].Repeat
			if top.Iter < repeat {
				top.Iter++
				p.Cursor = top.Start + 1
			} else {
				p.loopStack = p.loopStack[:len(p.loopStack)-1]
				p.Cursor++
			}
		} else {
			p.Cursor++
		}

	default:
		p.Cursor++
	}

	p.InstructionsExecuted++

	if delay > 0 {
		time.Sleep(delay)
	}

	if p.Cursor >= len(p.Program) && p.State == Running {
		p.State = Finished
		p.FinishTime = c.Now()
		return StepFinished
	}

	return outcome
}

func (p *Process) loopTop() *LoopFrame {
	if len(p.loopStack) == 0 {
		return nil
	}
	return &p.loopStack[len(p.loopStack)-1]
}

// LoopDepth reports the current nesting depth, for diagnostics/tests.
func (p *Process) LoopDepth() int { return len(p.loopStack) }
