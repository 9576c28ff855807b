package monitor

import (
	"fmt"

	"github.com/core-tools/procwatch/pkg/logging"
)

// formatReport renders the final session report.
func formatReport(snapshot StatisticsSnapshot) string {
	return fmt.Sprintf(
		"\n=== Process monitoring report ===\n"+
			"Total runtime: %.2f seconds\n"+
			"Restarts: %d\n"+
			"Timeout terminations: %d\n"+
			"Crashes: %d\n"+
			"Lines logged: %d\n"+
			"=================================",
		snapshot.TotalRuntime.Seconds(),
		snapshot.Restarts,
		snapshot.TimeoutTerminations,
		snapshot.Crashes,
		snapshot.LinesLogged,
	)
}

func logReport(logger logging.Logger, snapshot StatisticsSnapshot) {
	logger.Infof("%s", formatReport(snapshot))
}
