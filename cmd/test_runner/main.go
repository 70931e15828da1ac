// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements test_runner, which runs tast tests, gtests and
// host commands against a ChromeOS device or VM through cros_run_test.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/subcommands"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"

	"go.chromium.org/chromeos/testrunner/internal/command"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/resultsink"
	"go.chromium.org/chromeos/testrunner/internal/runner"
)

// Version is the version info of this command. It is filled in at build time.
var Version = "<unknown>"

// harness is the harness process currently run by test_runner, if any.
var harness atomic.Pointer[runner.Exec]

func newExecRunner(timeout time.Duration) runner.Runner {
	e := runner.NewExec(clock.NewClock(), timeout)
	harness.Store(e)
	return e
}

// installSignalHandler restores the terminal and cancels the run on SIGINT.
// On SIGTERM, sent by swarming on a bot timeout, the harness's children are
// terminated instead so that the harness still collects device logs before
// exiting. Canceling lets the run remove its temporary files.
func installSignalHandler(out io.Writer, cancel context.CancelFunc) {
	var st *terminal.State
	fd := int(os.Stdin.Fd())
	if terminal.IsTerminal(fd) {
		var err error
		if st, err = terminal.GetState(fd); err != nil {
			fmt.Fprintln(out, "Failed to get terminal state: ", err)
		}
	}

	command.InstallSignalHandler(out, cancel, func(sig os.Signal) bool {
		if sig == unix.SIGTERM {
			if e := harness.Load(); e != nil && e.PID() != 0 {
				if err := command.TerminateDescendants(out, e.PID()); err != nil {
					fmt.Fprintln(out, "Failed to terminate harness children: ", err)
				}
				return false
			}
		}
		if st != nil {
			terminal.Restore(fd, st)
		}
		return true
	})
}

// reorderArgs moves the arguments of the subcommand named by args[0] that
// it does not define behind "--", where they are passed through to the
// harness. Requests for help are left alone.
func reorderArgs(cmds []subcommands.Command, args []string) []string {
	if len(args) == 0 {
		return args
	}
	for _, a := range args[1:] {
		if a == "--" {
			break
		}
		if a == "-h" || a == "-help" || a == "--help" {
			return args
		}
	}
	for _, c := range cmds {
		if c.Name() != args[0] {
			continue
		}
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		return append([]string{args[0]}, command.SplitKnownArgs(fs, args[1:])...)
	}
	return args
}

// doMain implements the main body of the program. It's a separate function so
// that its deferred functions will run before os.Exit makes the program exit
// immediately.
func doMain(ctx context.Context, args []string, e *runEnv) int {
	top := flag.NewFlagSet("test_runner", flag.ContinueOnError)
	top.SetOutput(e.stderr)
	version := top.Bool("version", false, "print version and exit")
	top.BoolVar(&e.logTime, "logtime", false, "include date/time headers in logs")
	src := top.String("chromium-src", config.DefaultSrcRoot(e.getenv), "root of the Chromium checkout")
	if err := top.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}

	if *version {
		fmt.Fprintf(e.stdout, "test_runner version %s\n", Version)
		return 0
	}

	paths, err := config.NewPaths(*src)
	if err != nil {
		return command.WriteError(e.stderr, command.WithStatus(command.StatusConfigError, err))
	}
	e.paths = paths

	cmds := []subcommands.Command{
		newTastCmd(e),
		newGTestCmd(e),
		newHostCmdCmd(e),
	}
	cdr := subcommands.NewCommander(top, "test_runner")
	cdr.Output = e.stdout
	cdr.Error = e.stderr
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(cdr.CommandsCommand(), "")
	for _, c := range cmds {
		cdr.Register(c, "")
	}

	// The commander dispatches on the positional arguments of top.
	if err := top.Parse(reorderArgs(cmds, top.Args())); err != nil {
		return int(subcommands.ExitUsageError)
	}
	return int(cdr.Execute(ctx))
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	installSignalHandler(os.Stdout, cancel)
	code := doMain(ctx, os.Args[1:], &runEnv{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		getenv:     os.Getenv,
		environ:    os.Environ,
		newRunner:  newExecRunner,
		lookupHost: net.DefaultResolver.LookupHost,
		sink:       resultsink.FromContext,
	})
	cancel()
	os.Exit(code)
}
