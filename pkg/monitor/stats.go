package monitor

import (
	"sync/atomic"
	"time"
)

// RunStatistics accumulates session counters. Counters are monotonically
// non-decreasing within a session and are never reset. Updates come from
// three call sites: the supervision loop, the output relay goroutine
// (lines logged) and the termination controller (timeout terminations),
// so all mutation goes through atomics.
type RunStatistics struct {
	totalRuntimeNanos   int64 // atomic
	restarts            int64 // atomic
	timeoutTerminations int64 // atomic
	crashes             int64 // atomic
	linesLogged         int64 // atomic
}

// StatisticsSnapshot is a consistent-enough copy of the counters for
// reporting and tests.
type StatisticsSnapshot struct {
	TotalRuntime        time.Duration
	Restarts            int64
	TimeoutTerminations int64
	Crashes             int64
	LinesLogged         int64
}

func (s *RunStatistics) AddRuntime(d time.Duration) {
	atomic.AddInt64(&s.totalRuntimeNanos, int64(d))
}

func (s *RunStatistics) IncRestarts() {
	atomic.AddInt64(&s.restarts, 1)
}

func (s *RunStatistics) IncTimeoutTerminations() {
	atomic.AddInt64(&s.timeoutTerminations, 1)
}

func (s *RunStatistics) IncCrashes() {
	atomic.AddInt64(&s.crashes, 1)
}

func (s *RunStatistics) IncLinesLogged() {
	atomic.AddInt64(&s.linesLogged, 1)
}

func (s *RunStatistics) Snapshot() StatisticsSnapshot {
	return StatisticsSnapshot{
		TotalRuntime:        time.Duration(atomic.LoadInt64(&s.totalRuntimeNanos)),
		Restarts:            atomic.LoadInt64(&s.restarts),
		TimeoutTerminations: atomic.LoadInt64(&s.timeoutTerminations),
		Crashes:             atomic.LoadInt64(&s.crashes),
		LinesLogged:         atomic.LoadInt64(&s.linesLogged),
	}
}
