//go:build !windows

package process

import (
	"fmt"
	"syscall"
)

// SendTerminationSignal sends SIGTERM to the process on Unix systems,
// requesting a voluntary exit before any forced kill.
func SendTerminationSignal(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	return syscall.Kill(pid, syscall.SIGTERM)
}
