package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-tools/procwatch/pkg/errors"
)

func TestNewMonitor_Validation(t *testing.T) {
	sink := &recordingLogger{}

	tests := []struct {
		name        string
		config      ProcessConfig
		expectError bool
		description string
	}{
		{
			name:        "valid",
			config:      ProcessConfig{Command: []string{"echo", "hi"}, LogFile: "out.log"},
			description: "Minimal valid configuration",
		},
		{
			name:        "empty_command",
			config:      ProcessConfig{LogFile: "out.log"},
			expectError: true,
			description: "Command is required",
		},
		{
			name:        "negative_timeout",
			config:      ProcessConfig{Command: []string{"echo"}, LogFile: "out.log", Timeout: -time.Second},
			expectError: true,
			description: "Negative timeout is rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMonitor(tt.config, sink)
			if tt.expectError {
				assert.Error(t, err, tt.description)
				assert.True(t, errors.IsValidationError(err))
			} else {
				require.NoError(t, err, tt.description)
				assert.NotNil(t, m)
			}
		})
	}
}

func TestMonitor_RunNilContext(t *testing.T) {
	sink := &recordingLogger{}
	m, err := NewMonitor(ProcessConfig{Command: []string{"echo"}, LogFile: "out.log"}, sink)
	require.NoError(t, err)

	err = m.Run(nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestMonitor_SingleRunSuccess(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	m, err := NewMonitor(shellConfig("echo hi", "out.log"), sink)
	require.NoError(t, err)

	require.NoError(t, m.Run(context.Background()))

	snapshot := m.Stats()
	assert.Equal(t, []string{"hi"}, sink.childLines())
	assert.Equal(t, int64(1), snapshot.LinesLogged)
	assert.Equal(t, int64(0), snapshot.Restarts)
	assert.Equal(t, int64(0), snapshot.Crashes)
	assert.Equal(t, int64(0), snapshot.TimeoutTerminations)
	assert.Greater(t, snapshot.TotalRuntime, time.Duration(0))
	assert.Equal(t, 1, sink.countMessages("=== Process monitoring report ==="), "report is produced exactly once")
}

func TestMonitor_LinesRelayedInOrder(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	m, err := NewMonitor(shellConfig(`for i in 1 2 3 4 5; do echo "line $i"; done`, "out.log"), sink)
	require.NoError(t, err)

	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, []string{"line 1", "line 2", "line 3", "line 4", "line 5"}, sink.childLines())
	assert.Equal(t, int64(5), m.Stats().LinesLogged)
}

func TestMonitor_CrashCounted(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	m, err := NewMonitor(shellConfig("exit 3", "out.log"), sink)
	require.NoError(t, err)

	require.NoError(t, m.Run(context.Background()))

	snapshot := m.Stats()
	assert.Equal(t, int64(1), snapshot.Crashes)
	assert.Equal(t, int64(0), snapshot.Restarts)
	assert.True(t, sink.containsMessage("exited with code 3"))
}

func TestMonitor_SpawnFailureIsFatal(t *testing.T) {
	sink := &recordingLogger{}

	config := ProcessConfig{
		Command: []string{"/nonexistent/procwatch-test-binary"},
		LogFile: "out.log",
		Restart: true, // spawn failures are not retried even with restart configured
	}
	m, err := NewMonitor(config, sink)
	require.NoError(t, err)

	err = m.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsProcessError(err))
	assert.Equal(t, 1, sink.countMessages("=== Process monitoring report ==="), "report is produced even on fatal spawn failure")
}

func TestMonitor_TimeoutTermination(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	// exec so the shell does not fork sleep as a grandchild that would
	// keep the output pipe open after the supervised pid is terminated.
	config := shellConfig("exec sleep 30", "out.log")
	config.Timeout = 1 * time.Second
	m, err := NewMonitor(config, sink)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, m.Run(context.Background()))
	elapsed := time.Since(start)

	snapshot := m.Stats()
	assert.Equal(t, int64(1), snapshot.TimeoutTerminations)
	assert.Equal(t, int64(0), snapshot.Restarts)
	// Killed by signal, so the exit also classifies as a crash.
	assert.Equal(t, int64(1), snapshot.Crashes)
	assert.Less(t, elapsed, 5*time.Second, "process should be stopped near the timeout, not the full sleep")
	assert.GreaterOrEqual(t, elapsed, 1*time.Second)
}

func TestMonitor_RestartOnCrash(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	config := shellConfig("exit 1", "out.log")
	config.Restart = true
	config.RestartDelay = 10 * time.Millisecond
	m, err := NewMonitor(config, sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	require.NoError(t, m.Run(ctx))

	snapshot := m.Stats()
	assert.GreaterOrEqual(t, snapshot.Restarts, int64(1), "crashing child should have been restarted")
	// Every completed cycle records one crash then one restart; the
	// interrupt can land between the two.
	assert.True(t,
		snapshot.Crashes == snapshot.Restarts || snapshot.Crashes == snapshot.Restarts+1,
		"crashes (%d) should track restarts (%d)", snapshot.Crashes, snapshot.Restarts)
	assert.Equal(t, 1, sink.countMessages("=== Process monitoring report ==="))
}

func TestMonitor_InterruptWhileRunning(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	// exec so the shell does not fork sleep as a grandchild that would
	// keep the output pipe open after the supervised pid is terminated.
	config := shellConfig("exec sleep 30", "out.log")
	config.Restart = true
	m, err := NewMonitor(config, sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	require.NoError(t, m.Run(ctx))

	snapshot := m.Stats()
	assert.Less(t, time.Since(start), 10*time.Second, "interrupt should stop the session promptly")
	assert.Equal(t, int64(0), snapshot.Restarts, "interruption is not a restart")
	assert.Equal(t, int64(0), snapshot.Crashes, "supervisor-driven termination is not a crash")
	assert.Equal(t, int64(0), snapshot.TimeoutTerminations, "interrupt termination is not timeout-attributed")
	assert.Equal(t, 1, sink.countMessages("=== Process monitoring report ==="))
}

func TestMonitor_NaturalExitBeforeTimeout(t *testing.T) {
	requireUnix(t)
	sink := &recordingLogger{}

	config := shellConfig("echo done", "out.log")
	config.Timeout = 30 * time.Second
	m, err := NewMonitor(config, sink)
	require.NoError(t, err)

	require.NoError(t, m.Run(context.Background()))

	snapshot := m.Stats()
	assert.Equal(t, int64(0), snapshot.TimeoutTerminations, "natural exit must leave the timeout counter unchanged")
	assert.Equal(t, int64(0), snapshot.Crashes)
	assert.Equal(t, int64(1), snapshot.LinesLogged)
}
