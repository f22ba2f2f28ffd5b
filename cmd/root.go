// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Process exit codes.
const (
	ExitSuccess = 0
	ExitStartup = 1  // bad settings, unreadable trace, replayer setup failure
	ExitReplay  = -1 // fatal error inside the replay loop
)

// newRootCmd builds the command tree. The root command replays a trace when
// called without any subcommands.
func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "vkreplay",
		Short: "vkreplay - replay recorded Vulkan API traces",
		Long: `vkreplay reads a vktrace capture file and re-issues the recorded API calls
through the replayer registered for each tracer.

The whole trace, or a frame range of it, can be replayed several times in a row.

Examples:
  vkreplay -t app.vktrace                          # Replay once
  vkreplay -t app.vktrace -l 10                    # Replay ten times
  vkreplay -t app.vktrace -l 5 -lsf 100 -lef 200   # Replay frames 100..199 after the first pass
  vkreplay -t app.vktrace -s 1,10 -v full          # Request screenshots of frames 1 and 10`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), configFile, cmd.Flags(), cmd.OutOrStdout())
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")
	addReplayFlags(cmd.Flags())

	// Add subcommands
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newSynthCmd())
	return cmd
}

func addReplayFlags(f *pflag.FlagSet) {
	f.StringP("TraceFile", "t", "", "trace file to replay (required)")
	f.IntP("NumLoops", "l", 1, "number of times to replay the trace")
	f.Int("LoopStartFrame", -1, "frame at which later iterations resume (-lsf, -1 = trace start)")
	f.Int("LoopEndFrame", -1, "frame at which every iteration stops (-lef, -1 = trace end)")
	f.StringP("Screenshot", "s", "", "comma separated list of frames to take screenshots of")
	f.StringP("Verbosity", "v", "errors", "log verbosity: quiet, errors, warnings, full or debug")
	f.String("log-file", "", "also write logs to this file, rotated")
	f.String("metrics-listen", "", "serve Prometheus metrics on this address while replaying")
	f.String("report", "", "write a YAML run summary to this file")
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func startupError(err error) error {
	return &exitError{code: ExitStartup, err: err}
}

func replayError(err error) error {
	return &exitError{code: ExitReplay, err: err}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitStartup
}

// legacyFlags are the multi-letter single-dash spellings older tooling uses.
var legacyFlags = map[string]string{
	"-lsf": "--LoopStartFrame",
	"-lef": "--LoopEndFrame",
}

// rewriteLegacyArgs turns -lsf/-lef (optionally with =value) into their long
// forms, which pflag can parse. Arguments after "--" are left alone.
func rewriteLegacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyFlags[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(rewriteLegacyArgs(args))
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}

// Execute runs the command line and returns the process exit code.
// This is called by main.main().
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}
