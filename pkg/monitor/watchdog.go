package monitor

import (
	"sync"
	"time"

	"github.com/core-tools/procwatch/pkg/logging"
)

// timeoutWatchdog is a cancellable deferred termination tied one-to-one
// with a process handle. It fires at most once; a fire racing a natural
// exit is absorbed by the termination controller's idempotence.
type timeoutWatchdog struct {
	timer      *time.Timer
	fired      chan struct{}
	disarmOnce sync.Once
	logger     logging.Logger
}

// armTimeoutWatchdog schedules a timeout-attributed termination of the
// handle after the given duration.
func armTimeoutWatchdog(timeout time.Duration, h *ProcessHandle, t *terminator, logger logging.Logger) *timeoutWatchdog {
	logger.Infof("Timeout set to %v, PID: %d", timeout, h.Pid())

	w := &timeoutWatchdog{
		fired:  make(chan struct{}),
		logger: logger,
	}
	w.timer = time.AfterFunc(timeout, func() {
		defer close(w.fired)
		logger.Warnf("Timeout of %v elapsed, terminating process, PID: %d", timeout, h.Pid())
		t.terminate(h, true)
	})

	return w
}

// disarm cancels the pending termination; if the watchdog is already
// firing, disarm joins it instead, so the caller observes any timeout
// attribution once disarm returns. A nil watchdog (timeout not
// configured) is a no-op, as are repeated calls.
func (w *timeoutWatchdog) disarm() {
	if w == nil {
		return
	}
	w.disarmOnce.Do(func() {
		if w.timer.Stop() {
			w.logger.Infof("Timeout timer cancelled")
		} else {
			<-w.fired
		}
	})
}
