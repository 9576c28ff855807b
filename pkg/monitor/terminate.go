package monitor

import (
	"time"

	"github.com/core-tools/procwatch/pkg/logging"
	"github.com/core-tools/procwatch/pkg/process"
)

// terminator executes the graceful-then-forced shutdown protocol for a
// running process handle.
type terminator struct {
	gracePeriod time.Duration
	logger      logging.Logger
	stats       *RunStatistics
}

func newTerminator(gracePeriod time.Duration, logger logging.Logger, stats *RunStatistics) *terminator {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &terminator{
		gracePeriod: gracePeriod,
		logger:      logger,
		stats:       stats,
	}
}

// terminate ensures the process behind the handle is no longer running:
// graceful termination request, grace period, then forced kill with an
// unbounded exit-confirmation wait. Safe to call on an already-exited
// handle (no signal, no statistics change) and race-tolerant against a
// concurrent invocation on the same handle. Termination errors are logged,
// not propagated. When dueToTimeout is set, the timeout counter is bumped
// exactly once per live-handle invocation, even if termination errors.
func (t *terminator) terminate(h *ProcessHandle, dueToTimeout bool) {
	if h == nil || h.Exited() {
		return
	}

	if dueToTimeout {
		defer t.stats.IncTimeoutTerminations()
	}

	pid := h.Pid()
	t.logger.Infof("Terminating process, PID: %d", pid)

	if err := process.SendTerminationSignal(pid); err != nil {
		t.logger.Errorf("Failed to send termination signal, PID: %d, error: %v", pid, err)
	} else {
		t.logger.Infof("Termination signal sent, PID: %d", pid)
	}

	select {
	case <-h.Done():
		t.logger.Infof("Process terminated gracefully, PID: %d", pid)
		return
	case <-time.After(t.gracePeriod):
		t.logger.Warnf("Process did not terminate within %v, killing it, PID: %d", t.gracePeriod, pid)
	}

	if err := h.Kill(); err != nil {
		t.logger.Errorf("Failed to kill process, PID: %d, error: %v", pid, err)
	}

	// Forced kill is assumed always effective on the target platform, so
	// this wait carries no ceiling. Log first so a process that somehow
	// survives the kill is visible in the log.
	t.logger.Infof("Waiting for exit confirmation, PID: %d", pid)
	<-h.Done()
	t.logger.Infof("Process killed, PID: %d", pid)
}
