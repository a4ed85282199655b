// Package config loads the emulator's whitespace-separated key/value
// config.txt file into a plain value-typed Config struct.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Scheduler names the scheduling discipline in effect.
type Scheduler string

const (
	FCFS Scheduler = "fcfs"
	RR   Scheduler = "rr"
)

// Config is the frozen, immutable-after-load emulator configuration.
type Config struct {
	NumCPU           int
	SchedulerKind    Scheduler
	QuantumCycles    int
	BatchProcessFreq int
	MinIns           int
	MaxIns           int
	DelaysPerExec    int
	MaxOverallMem    int64
	MemPerFrame      int64
	MemPerProc       int64
}

// Default returns the built-in defaults used when config.txt is missing.
func Default() Config {
	return Config{
		NumCPU:           2,
		SchedulerKind:    RR,
		QuantumCycles:    4,
		BatchProcessFreq: 1,
		MinIns:           100,
		MaxIns:           100,
		DelaysPerExec:    0,
		MaxOverallMem:    16384,
		MemPerFrame:      16,
		MemPerProc:       4096,
	}
}

// Load reads path as whitespace-separated "key value" lines. Unknown
// keys are ignored; a malformed value for a recognized key is logged
// and that key falls back to its default rather than aborting the
// whole load. A missing file yields the built-in defaults.
func Load(path string, logger *slog.Logger) Config {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		logger.Info("config file not found, using defaults", "path", path, "error", err)
		return cfg
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		key, value := fields[0], fields[1]
		if err := apply(&cfg, key, value); err != nil {
			logger.Warn("config parse error, keeping default for key", "key", key, "value", value, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("error reading config file", "path", path, "error", err)
	}

	return cfg
}

func apply(cfg *Config, key, value string) error {
	switch key {
	case "num-cpu":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.NumCPU = n
	case "scheduler":
		switch value {
		case string(FCFS), string(RR):
			cfg.SchedulerKind = Scheduler(value)
		default:
			return fmt.Errorf("unrecognized scheduler %q", value)
		}
	case "quantum-cycles":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.QuantumCycles = n
	case "batch-process-freq":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.BatchProcessFreq = n
	case "min-ins":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.MinIns = n
	case "max-ins":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.MaxIns = n
	case "delays-per-exec":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.DelaysPerExec = n
	case "max-overall-mem":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.MaxOverallMem = n
	case "mem-per-frame":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.MemPerFrame = n
	case "mem-per-proc":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.MemPerProc = n
	default:
		// unknown keys are ignored
	}
	return nil
}
