//go:build windows

package process

import (
	"fmt"
	"os"
)

// SendTerminationSignal terminates the process on Windows. There is no
// SIGTERM equivalent for an unrelated console process, so the graceful
// request degrades to TerminateProcess.
func SendTerminationSignal(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %v", pid, err)
	}
	return proc.Kill()
}
