package emulator

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dubcc-csosim/csosim/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequiresInitializeBeforeUse(t *testing.T) {
	e := New(testLogger())
	if _, err := e.CreateProcess("p1"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestCreateAttachAndList(t *testing.T) {
	e := New(testLogger())
	e.Initialize(config.Config{
		NumCPU:        1,
		SchedulerKind: config.FCFS,
		MaxOverallMem: 100,
		MemPerProc:    10,
	}, t.TempDir())

	if _, err := e.CreateProcess("p1"); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if _, err := e.CreateProcess("p1"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate name, got %v", err)
	}

	if _, err := e.Attach("p1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := e.Attach("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	running, finished, err := e.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(running) != 1 || len(finished) != 0 {
		t.Fatalf("expected 1 running, 0 finished, got %d/%d", len(running), len(finished))
	}
}

func TestAttachRejectsFinishedProcess(t *testing.T) {
	e := New(testLogger())
	e.Initialize(config.Config{
		NumCPU:        1,
		SchedulerKind: config.FCFS,
		MaxOverallMem: 100,
		MemPerProc:    10,
		MinIns:        0,
		MaxIns:        0,
	}, t.TempDir())
	e.Scheduler.TickInterval = 10 * time.Millisecond

	if _, err := e.CreateProcess("done"); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}

	if err := e.StartScheduler(); err != nil {
		t.Fatalf("StartScheduler: %v", err)
	}
	defer e.StopScheduler()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		running, finished, err := e.List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(finished) == 1 && len(running) == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := e.Attach("done"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound attaching to a finished process, got %v", err)
	}
}

func TestDump(t *testing.T) {
	e := New(testLogger())
	e.Initialize(config.Config{
		NumCPU:        1,
		SchedulerKind: config.FCFS,
		MaxOverallMem: 100,
		MemPerProc:    10,
	}, t.TempDir())
	e.CreateProcess("p1")

	out, err := e.Dump("p1")
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty dump output")
	}
}
