//go:build windows

package trace

// processCPUNS is not measured on Windows.
func processCPUNS() int64 { return 0 }
