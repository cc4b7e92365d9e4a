//go:build windows

package prompt

// drainStdin is a no-op on Windows. survey's ANSI cursor queries are not used
// in the same way, and syscall non-blocking reads differ.
func drainStdin() {}

// RestoreTTY is a no-op on Windows.
func RestoreTTY() {}
