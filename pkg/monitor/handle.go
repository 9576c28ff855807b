package monitor

import (
	"io"
	"os"

	"github.com/core-tools/procwatch/pkg/logging"
)

// ProcessHandle represents one live child process instance. A reaper
// goroutine waits on the process and closes the done channel once the exit
// status is recorded, so Exited is a non-blocking check and Done
// establishes a happens-before edge for the exit fields. Exactly one
// handle is live at a time; the supervision loop creates the next one only
// after this one's full teardown.
type ProcessHandle struct {
	process *os.Process
	stdout  io.ReadCloser
	done    chan struct{}

	// Populated by the reaper goroutine before done is closed.
	state   *os.ProcessState
	waitErr error
}

func newProcessHandle(proc *os.Process, stdout io.ReadCloser, logger logging.Logger) *ProcessHandle {
	h := &ProcessHandle{
		process: proc,
		stdout:  stdout,
		done:    make(chan struct{}),
	}

	go func() {
		state, err := proc.Wait()
		h.state = state
		h.waitErr = err
		close(h.done)
		if err != nil {
			logger.Warnf("Process PID %d wait failed: %v", proc.Pid, err)
		} else {
			logger.Debugf("Process PID %d exited with status: %v", proc.Pid, state)
		}
	}()

	return h
}

func (h *ProcessHandle) Pid() int {
	return h.process.Pid
}

// Done is closed once the process has exited and its status is recorded.
func (h *ProcessHandle) Done() <-chan struct{} {
	return h.done
}

// Exited reports whether the process has already exited, without blocking.
func (h *ProcessHandle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the recorded exit code. Valid only after Done; deaths
// by signal and wait failures report -1.
func (h *ProcessHandle) ExitCode() int {
	if h.state == nil {
		return -1
	}
	return h.state.ExitCode()
}

// Kill sends an unconditional kill to the process.
func (h *ProcessHandle) Kill() error {
	return h.process.Kill()
}

// Close releases the handle's output stream. Call after the relay has
// drained it.
func (h *ProcessHandle) Close() {
	if h.stdout != nil {
		h.stdout.Close()
		h.stdout = nil
	}
}
