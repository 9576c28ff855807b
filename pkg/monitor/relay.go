package monitor

import (
	"bufio"
	"io"
	"strings"

	"github.com/core-tools/procwatch/pkg/logging"
)

// startOutputRelay drains the child's merged output stream on a dedicated
// goroutine, writing each line to the log sink and counting it. Lines are
// forwarded strictly in arrival order with no length cap, so every line
// the child writes reaches the sink and the pipe stays drained however
// the child formats its output. The goroutine terminates when the stream
// reaches end-of-input, which the child's exit guarantees, so joining on
// the returned channel is bounded by process exit. A read error is
// delivered on the channel instead of being swallowed.
func startOutputRelay(stream io.Reader, sink logging.Logger, stats *RunStatistics) <-chan error {
	done := make(chan error, 1)

	go func() {
		reader := bufio.NewReaderSize(stream, 64*1024)
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				line = strings.TrimSuffix(line, "\n")
				line = strings.TrimSuffix(line, "\r")
				sink.Infof("%s", line)
				stats.IncLinesLogged()
			}
			if err != nil {
				if err == io.EOF {
					err = nil
				}
				done <- err
				return
			}
		}
	}()

	return done
}
