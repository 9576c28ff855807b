package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/core-tools/procwatch/pkg/errors"
	"github.com/core-tools/procwatch/pkg/logsink"
	"github.com/core-tools/procwatch/pkg/monitor"
)

type flagOptions struct {
	Command string `long:"command" description:"command to run under supervision, e.g. \"ping google.com\""`
	LogFile string `long:"logfile" description:"path of the log file receiving the process output"`
	Restart bool   `long:"restart" description:"restart the process when it exits"`
	Timeout int    `long:"timeout" description:"seconds after which the process is terminated"`
	Config  string `long:"config" description:"optional YAML configuration file"`
}

func main() {
	var opts flagOptions
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	_, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	config, sinkConfig, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	sink, err := logsink.NewSink(sinkConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log sink: %v\n", err)
		os.Exit(1)
	}

	m, err := monitor.NewMonitor(config, sink)
	if err != nil {
		sink.Close()
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// External interruption is a graceful-shutdown request: the monitor
	// terminates the current process and still produces the final report.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := m.Run(ctx)
	sink.Close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Process monitoring failed: %v\n", runErr)
		os.Exit(1)
	}
}

// buildConfig assembles the session configuration from flags, optionally
// seeded from a YAML file. Explicit flags override file values.
func buildConfig(opts flagOptions) (monitor.ProcessConfig, logsink.Config, error) {
	var config monitor.ProcessConfig
	var sinkConfig logsink.Config

	if opts.Config != "" {
		fileConfig, err := monitor.LoadConfigFromFile(opts.Config)
		if err != nil {
			return config, sinkConfig, err
		}
		if opts.Command != "" {
			fileConfig.Command = opts.Command
		}
		if opts.LogFile != "" {
			fileConfig.LogFile = opts.LogFile
		}
		if opts.Restart {
			fileConfig.Restart = true
		}
		if opts.Timeout > 0 {
			fileConfig.TimeoutSeconds = opts.Timeout
		}
		config, err = fileConfig.ProcessConfig()
		if err != nil {
			return config, sinkConfig, err
		}
		if fileConfig.Log != nil {
			sinkConfig = *fileConfig.Log
		}
		if sinkConfig.Path == "" {
			sinkConfig.Path = config.LogFile
		}
		return config, sinkConfig, nil
	}

	if opts.Command == "" {
		return config, sinkConfig, errors.NewValidationError("command is required", nil)
	}
	if opts.LogFile == "" {
		return config, sinkConfig, errors.NewValidationError("logfile is required", nil)
	}
	if opts.Timeout < 0 {
		return config, sinkConfig, errors.NewValidationError("timeout cannot be negative", nil).WithContext("timeout", opts.Timeout)
	}

	tokens, err := monitor.ParseCommandLine(opts.Command)
	if err != nil {
		return config, sinkConfig, err
	}

	config = monitor.ProcessConfig{
		Command: tokens,
		LogFile: opts.LogFile,
		Restart: opts.Restart,
		Timeout: time.Duration(opts.Timeout) * time.Second,
	}
	sinkConfig = logsink.Config{Path: opts.LogFile}

	return config, sinkConfig, nil
}
