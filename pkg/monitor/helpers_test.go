package monitor

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-tools/procwatch/pkg/process"
)

// recordingLogger captures log entries for assertions. It stands in for
// the session log sink in tests.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level   string
	message string
}

func (l *recordingLogger) logf(level string, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, message: fmt.Sprintf(format, args...)})
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.logf("debug", format, args...)
}

func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.logf("info", format, args...)
}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.logf("warn", format, args...)
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.logf("error", format, args...)
}

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.entries...)
}

// childLines returns the info entries relayed from the child, excluding
// the monitor's own prefixed entries.
func (l *recordingLogger) childLines() []string {
	var lines []string
	for _, entry := range l.all() {
		if entry.level == "info" && !strings.HasPrefix(entry.message, "monitor: ") {
			lines = append(lines, entry.message)
		}
	}
	return lines
}

func (l *recordingLogger) containsMessage(substring string) bool {
	for _, entry := range l.all() {
		if strings.Contains(entry.message, substring) {
			return true
		}
	}
	return false
}

func (l *recordingLogger) countMessages(substring string) int {
	count := 0
	for _, entry := range l.all() {
		if strings.Contains(entry.message, substring) {
			count++
		}
	}
	return count
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}
}

// startShell spawns `/bin/sh -c script` through the process package and
// wraps it in a handle, the way the supervision loop does.
func startShell(t *testing.T, script string, logger *recordingLogger) *ProcessHandle {
	t.Helper()
	requireUnix(t)

	proc, stdout, err := process.Execute(context.Background(), process.CommandSpec{
		Path: "/bin/sh",
		Args: []string{"-c", script},
	}, logger)
	require.NoError(t, err, "failed to start shell script: %s", script)

	return newProcessHandle(proc, stdout, logger)
}

func shellConfig(script string, logFile string) ProcessConfig {
	return ProcessConfig{
		Command: []string{"/bin/sh", "-c", script},
		LogFile: logFile,
	}
}
