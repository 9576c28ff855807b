package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/core-tools/procwatch/pkg/errors"
	"github.com/core-tools/procwatch/pkg/logging"
	"github.com/core-tools/procwatch/pkg/process"
)

// Monitor supervises a single child process: it spawns it, relays its
// merged output into the log sink, enforces the configured timeout,
// restarts it on exit when configured, and accumulates session statistics
// reported once on any exit path.
type Monitor struct {
	config     ProcessConfig
	sink       logging.Logger // shared session sink, also receives child output lines
	logger     logging.Logger // prefixed logger for supervisor events
	stats      RunStatistics
	terminator *terminator
	reportOnce sync.Once
}

// NewMonitor validates the configuration and binds the monitor to the
// session log sink.
func NewMonitor(config ProcessConfig, sink logging.Logger) (*Monitor, error) {
	SetConfigDefaults(&config)
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	m := &Monitor{
		config: config,
		sink:   sink,
		logger: logging.NewLoggerFromLogger("monitor: ", sink),
	}
	m.terminator = newTerminator(DefaultGracePeriod, m.logger, &m.stats)

	return m, nil
}

// Stats returns a snapshot of the session counters.
func (m *Monitor) Stats() StatisticsSnapshot {
	return m.stats.Snapshot()
}

// Run drives the supervision loop until the process exits without restart
// configured, a spawn fails, or ctx is cancelled (external interruption).
// The final report is logged exactly once on every path. A spawn failure
// is returned as an error and is never retried, even with restart
// configured: a command that cannot spawn will not spawn on retry either.
func (m *Monitor) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.NewValidationError("context cannot be nil", nil)
	}

	defer m.finalize()

	for {
		spec := process.CommandSpec{
			Path: m.config.Command[0],
			Args: m.config.Command[1:],
		}
		proc, stdout, err := process.Execute(ctx, spec, m.logger)
		if err != nil {
			m.logger.Errorf("Failed to start process: %v", err)
			return errors.NewProcessError("failed to start process", err)
		}

		handle := newProcessHandle(proc, stdout, m.logger)
		startTime := time.Now()

		relayDone := startOutputRelay(stdout, m.sink, &m.stats)

		var watchdog *timeoutWatchdog
		if m.config.Timeout > 0 {
			watchdog = armTimeoutWatchdog(m.config.Timeout, handle, m.terminator, m.logger)
		}

		interrupted := false
		select {
		case <-handle.Done():
		case <-ctx.Done():
			interrupted = true
			m.logger.Infof("Interrupt received, initiating graceful shutdown")
			m.terminator.terminate(handle, false)
		}

		// Reconcile per-instance resources: the watchdog must not fire
		// against a reaped handle, and the relay join is bounded because
		// process exit closes the stream.
		watchdog.disarm()
		if err := <-relayDone; err != nil {
			m.logger.Warnf("Output relay finished with error: %v", err)
		}
		handle.Close()

		if interrupted {
			return nil
		}

		m.stats.AddRuntime(time.Since(startTime))
		m.logger.Infof("Process finished")

		if code := handle.ExitCode(); code != 0 {
			m.stats.IncCrashes()
			m.logger.Warnf("Process exited with code %d", code)
		}

		if !m.config.Restart {
			return nil
		}

		m.stats.IncRestarts()
		m.logger.Infof("Restart flag is set, restarting process")
		select {
		case <-time.After(m.config.RestartDelay):
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Monitor) finalize() {
	m.reportOnce.Do(func() {
		logReport(m.logger, m.stats.Snapshot())
		m.logger.Infof("Process monitoring finished")
	})
}
