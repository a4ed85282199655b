package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"), testLogger())
	want := Default()
	if cfg != want {
		t.Fatalf("expected defaults for missing file, got %+v", cfg)
	}
}

func TestLoadParsesRecognizedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	contents := "num-cpu 4\nscheduler rr\nquantum-cycles 8\nmax-overall-mem 1024\nmem-per-proc 64\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path, testLogger())
	if cfg.NumCPU != 4 {
		t.Errorf("NumCPU = %d, want 4", cfg.NumCPU)
	}
	if cfg.SchedulerKind != RR {
		t.Errorf("SchedulerKind = %v, want RR", cfg.SchedulerKind)
	}
	if cfg.QuantumCycles != 8 {
		t.Errorf("QuantumCycles = %d, want 8", cfg.QuantumCycles)
	}
	if cfg.MaxOverallMem != 1024 {
		t.Errorf("MaxOverallMem = %d, want 1024", cfg.MaxOverallMem)
	}
	if cfg.MemPerProc != 64 {
		t.Errorf("MemPerProc = %d, want 64", cfg.MemPerProc)
	}
}

func TestLoadFallsBackOnMalformedValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	contents := "num-cpu not-a-number\nscheduler rr\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path, testLogger())
	if cfg.NumCPU != Default().NumCPU {
		t.Errorf("expected NumCPU to fall back to default %d, got %d", Default().NumCPU, cfg.NumCPU)
	}
	if cfg.SchedulerKind != RR {
		t.Errorf("expected scheduler to still parse as rr, got %v", cfg.SchedulerKind)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	contents := "totally-unknown-key 123\nnum-cpu 2\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path, testLogger())
	if cfg.NumCPU != 2 {
		t.Errorf("NumCPU = %d, want 2", cfg.NumCPU)
	}
}
