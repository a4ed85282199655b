// Command csosim is the CSOPESY scheduling emulator's CLI entrypoint: a
// single binary wiring together the logger, emulator, and shell, rather
// than splitting scheduling, CPU, and memory into separate services.
package main

import (
	"fmt"
	"os"

	"github.com/dubcc-csosim/csosim/internal/emulator"
	"github.com/dubcc-csosim/csosim/internal/logging"
	"github.com/dubcc-csosim/csosim/internal/shell"
)

const (
	configPath  = "config.txt"
	snapshotDir = "."
	logPath     = "csosim.log"
)

func main() {
	logger, err := logging.New(logPath, "info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "csosim: failed to open log file: %v\n", err)
		os.Exit(1)
	}

	emu := emulator.New(logger)
	sh := shell.New(emu, os.Stdin, os.Stdout, configPath, snapshotDir)
	sh.Run()
}
