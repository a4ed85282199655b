// Package cliterm clears the terminal and prints the shell's ASCII
// banner. internal/shell calls it on startup and after every
// "clear"-equivalent shell verb.
package cliterm

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const banner = `
  ___  __  __  ___  ___  ___ ____   __
 / __\/ _\/ _\/ __\/ __\/ __\ ___\ /__\
/ /__\ \\ \\ \\__ \__ \\__ \___ \/ \/ /
\____/\__/\__/\___/\___/\___/\____/_\_/

        csosim OS scheduling emulator
`

// IsTerminal reports whether fd is attached to a terminal, so ANSI escape
// codes are only ever emitted when there's a human on the other end
// (piped stdout/stderr stays plain text).
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Clear emits the ANSI "clear screen and home cursor" sequence, but only
// if w is a terminal; otherwise it is a no-op.
func Clear(w io.Writer) {
	f, ok := w.(*os.File)
	if !ok || !IsTerminal(f) {
		return
	}
	fmt.Fprint(w, "\x1b[2J\x1b[H")
}

// Banner prints the startup banner.
func Banner(w io.Writer) {
	fmt.Fprint(w, banner)
}
