// Package utils provides internal utility functions.
package utils

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ParsePort parses a TCP port number.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port: %s", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port: %d (must be 1-65535)", port)
	}
	return port, nil
}

// IsPortOpen checks if a TCP port is accessible within the given timeout.
func IsPortOpen(host string, port int, timeout time.Duration) bool {
	return DialPort(context.Background(), host, port, timeout) == nil
}

// DialPort opens and closes a TCP connection to host:port.
func DialPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
