package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Lines       int `long:"lines" description:"Number of lines to emit (debug feature)"`
	IntervalMS  int `long:"interval-ms" description:"Delay between lines in milliseconds (debug feature)"`
	RunDuration int `long:"run-duration" description:"Seconds to keep running after emitting (debug feature)"`
	ExitCode    int `long:"exit-code" description:"Exit code to finish with (debug feature)"`
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	interval := time.Duration(opts.IntervalMS) * time.Millisecond

	for i := 1; i <= opts.Lines; i++ {
		fmt.Printf("linegen line %d\n", i)
		if interval > 0 {
			select {
			case receivedSignal := <-sig:
				fmt.Printf("linegen received signal: %v\n", receivedSignal)
				os.Exit(opts.ExitCode)
			case <-time.After(interval):
			}
		}
	}

	if opts.RunDuration > 0 {
		fmt.Printf("linegen running for %d seconds\n", opts.RunDuration)
		select {
		case receivedSignal := <-sig:
			fmt.Printf("linegen received signal: %v\n", receivedSignal)
		case <-time.After(time.Duration(opts.RunDuration) * time.Second):
			fmt.Printf("linegen run duration elapsed\n")
		}
	}

	os.Exit(opts.ExitCode)
}
