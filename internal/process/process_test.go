package process

import (
	"testing"
	"time"

	"github.com/dubcc-csosim/csosim/internal/clock"
)

func TestSleepAndWake(t *testing.T) {
	c := clock.NewManual(time.Now())
	prog := []Instruction{
		Print("x"),
		Sleep(3),
		Print("y"),
	}
	p := New(1, "p", prog, c.Now())
	p.State = Running

	if outcome := p.ExecuteOneStep(0, 0, c); outcome != Continued {
		t.Fatalf("step 1: want Continued, got %v", outcome)
	}
	if len(p.Log) != 1 {
		t.Fatalf("expected one log line after PRINT(x), got %d", len(p.Log))
	}

	if outcome := p.ExecuteOneStep(0, 0, c); outcome != WentToSleep {
		t.Fatalf("step 2: want WentToSleep, got %v", outcome)
	}
	if p.State != Waiting {
		t.Fatalf("expected Waiting after SLEEP, got %v", p.State)
	}
	if p.SleepTicksRemaining != 3 {
		t.Fatalf("expected 3 sleep ticks remaining, got %d", p.SleepTicksRemaining)
	}
	if p.Cursor != 2 {
		t.Fatalf("expected cursor to advance past SLEEP to 2, got %d", p.Cursor)
	}

	// Simulate the scheduler's decrementWaiting ticking the sleep down.
	for i := 0; i < 3; i++ {
		p.SleepTicksRemaining--
	}
	p.State = Ready
	if p.SleepTicksRemaining != 0 {
		t.Fatalf("expected sleep countdown to reach 0, got %d", p.SleepTicksRemaining)
	}

	p.State = Running
	outcome := p.ExecuteOneStep(0, 0, c)
	if outcome != StepFinished {
		t.Fatalf("step 3: want StepFinished, got %v", outcome)
	}
	if len(p.Log) != 2 {
		t.Fatalf("expected PRINT(y) to append a second log line, got %d lines", len(p.Log))
	}
	if p.State != Finished {
		t.Fatalf("expected Finished after last instruction, got %v", p.State)
	}
	if p.InstructionsExecuted != 3 {
		t.Fatalf("expected 3 instructions executed total, got %d", p.InstructionsExecuted)
	}
}

func TestLoopExecution(t *testing.T) {
	c := clock.NewManual(time.Now())
	prog := []Instruction{
		ForStart(3),
		Print("tick"),
		ForEnd(),
	}
	p := New(1, "loopy", prog, c.Now())
	p.State = Running

	var last StepOutcome
	for i := 0; i < 20 && p.State != Finished; i++ {
		last = p.ExecuteOneStep(0, 0, c)
	}

	if last != StepFinished {
		t.Fatalf("expected final outcome StepFinished, got %v", last)
	}
	if len(p.Log) != 3 {
		t.Fatalf("expected exactly 3 log lines, got %d", len(p.Log))
	}
	if p.Cursor != 3 {
		t.Fatalf("expected cursor == 3 at completion, got %d", p.Cursor)
	}
	if p.LoopDepth() != 0 {
		t.Fatalf("expected empty loop stack at completion, got depth %d", p.LoopDepth())
	}
	if p.InstructionsExecuted != 7 {
		t.Fatalf("expected instructions_executed == 7, got %d", p.InstructionsExecuted)
	}
}

func TestSaturatingArithmetic(t *testing.T) {
	c := clock.NewManual(time.Now())
	prog := []Instruction{
		Declare("x", 65000),
		Add("x", "x", "1000"),
		Subtract("y", "x", "100000"),
	}
	p := New(1, "sat", prog, c.Now())
	p.State = Running

	for p.State != Finished {
		p.ExecuteOneStep(0, 0, c)
	}

	if got := p.Variables["x"]; got != 65535 {
		t.Fatalf("expected x to saturate at 65535, got %d", got)
	}
	if got := p.Variables["y"]; got != 0 {
		t.Fatalf("expected y to floor at 0 on underflow, got %d", got)
	}
}

func TestCompletionPercent(t *testing.T) {
	c := clock.NewManual(time.Now())
	prog := []Instruction{Print("a"), Print("b"), Print("c"), Print("d")}
	p := New(1, "pct", prog, c.Now())
	p.State = Running

	p.ExecuteOneStep(0, 0, c)
	if got := p.CompletionPercent(); got != 25 {
		t.Fatalf("expected 25%% after one of four instructions, got %v", got)
	}
}
