package shell

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dubcc-csosim/csosim/internal/emulator"
)

func TestShellInitializeAttachAndExit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emu := emulator.New(logger)

	configPath := filepath.Join(t.TempDir(), "missing-config.txt")
	snapshotDir := t.TempDir()

	in := strings.NewReader("initialize\nscreen -s myproc\nexit\nexit\n")
	var out bytes.Buffer

	sh := New(emu, in, &out, configPath, snapshotDir)
	sh.Run()

	got := out.String()
	if !strings.Contains(got, "Initialized.") {
		t.Errorf("expected initialization confirmation, got:\n%s", got)
	}
	if !strings.Contains(got, `Attached to new process "myproc"`) {
		t.Errorf("expected attach confirmation, got:\n%s", got)
	}
}

func TestShellRejectsCommandsBeforeInitialize(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emu := emulator.New(logger)

	configPath := filepath.Join(t.TempDir(), "missing-config.txt")
	snapshotDir := t.TempDir()

	in := strings.NewReader("screen -s myproc\nexit\n")
	var out bytes.Buffer

	sh := New(emu, in, &out, configPath, snapshotDir)
	sh.Run()

	got := out.String()
	if !strings.Contains(got, "not initialized") {
		t.Errorf("expected a not-initialized error, got:\n%s", got)
	}
}
