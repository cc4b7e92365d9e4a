//go:build !windows

package prompt

import (
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/term"
)

// drainStdin discards bytes already queued on stdin, such as the terminal's
// replies (\033[row;colR) to survey's cursor position queries.
func drainStdin() {
	fd := int(os.Stdin.Fd())
	if err := syscall.SetNonblock(fd, true); err != nil {
		return
	}
	defer func() { _ = syscall.SetNonblock(fd, false) }()

	// Replies may arrive a moment after the menu closes.
	time.Sleep(20 * time.Millisecond)
	buf := make([]byte, 256)
	for {
		n, err := syscall.Read(fd, buf)
		if n <= 0 || err != nil {
			return
		}
	}
}

// RestoreTTY resets terminal modes a prompt interrupted mid-read may have left
// behind (raw mode, echo off).
func RestoreTTY() {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	cmd := exec.Command("stty", "sane")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}
