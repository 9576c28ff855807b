package process

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/core-tools/procwatch/pkg/errors"
	"github.com/core-tools/procwatch/pkg/logging"
)

// CommandSpec describes the child command as an ordered token sequence.
// The first token is resolved against PATH unless it contains a separator.
type CommandSpec struct {
	Path string
	Args []string
}

// Execute spawns the child with stdout and stderr merged into a single
// stream. Stdin is not connected. The caller owns the returned process and
// the read end of the output pipe; the child exiting closes the stream.
func Execute(ctx context.Context, spec CommandSpec, logger logging.Logger) (*os.Process, io.ReadCloser, error) {
	if ctx == nil {
		return nil, nil, errors.NewValidationError("context cannot be nil", nil)
	}
	if spec.Path == "" {
		return nil, nil, errors.NewValidationError("command is required", nil)
	}

	logger.Infof("Executing process: %s, args: %v", spec.Path, spec.Args)

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, errors.NewProcessError("failed to create stdout pipe", err).WithContext("command", spec.Path)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		stdout.Close()
		return nil, nil, errors.NewProcessError("failed to start the process", err).WithContext("command", spec.Path)
	}

	// Check if context was cancelled during startup
	if ctx.Err() != nil {
		logger.Infof("Context cancelled during startup, cleaning up...")
		cmd.Process.Kill()
		// Reap the killed child so it does not linger as a zombie.
		go cmd.Process.Wait()
		stdout.Close()
		return nil, nil, errors.NewCancelledError("startup cancelled", ctx.Err()).
			WithContext("command", spec.Path).
			WithContext("pid", cmd.Process.Pid)
	}

	logger.Infof("Process started, PID: %d", cmd.Process.Pid)

	return cmd.Process, stdout, nil
}
