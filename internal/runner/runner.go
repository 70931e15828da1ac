// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runner runs the test harness as a subprocess.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sys/unix"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/logging"
)

// KillGracePeriod is how long a process gets to exit after SIGTERM before
// it is killed.
const KillGracePeriod = 10 * time.Second

// Cmd is a command to run.
type Cmd struct {
	// Args holds the program path followed by its arguments.
	Args []string
	// Env is the complete environment of the process.
	Env []string
	// Dir is the working directory of the process.
	Dir            string
	Stdout, Stderr io.Writer
}

// Runner runs a command to completion and returns its exit code.
type Runner interface {
	Run(ctx context.Context, cmd *Cmd) (exitCode int, err error)
}

// Exec is a Runner executing commands as local processes.
//
// A process still running when the timeout expires or ctx is canceled gets
// SIGTERM, followed by SIGKILL after KillGracePeriod.
type Exec struct {
	clk     clock.Clock
	timeout time.Duration
	pid     atomic.Int32
}

var _ Runner = &Exec{}

// NewExec returns an Exec using clk to measure timeout. A zero timeout
// disables it.
func NewExec(clk clock.Clock, timeout time.Duration) *Exec {
	return &Exec{clk: clk, timeout: timeout}
}

// PID returns the process ID of the running command, or 0 if none is
// running.
func (e *Exec) PID() int32 {
	return e.pid.Load()
}

// Run starts cmd and waits for it to exit. A command exiting with a non-zero
// status is not an error; a command killed by a signal reports 128 plus the
// signal number as shells do. An error is returned only if the command could
// not be run.
func (e *Exec) Run(ctx context.Context, cmd *Cmd) (int, error) {
	if len(cmd.Args) == 0 {
		return 0, errors.New("no command to run")
	}
	c := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr

	logging.Debugf(ctx, "Running %s", strings.Join(cmd.Args, " "))
	if err := c.Start(); err != nil {
		return 0, errors.Wrapf(err, "failed to start %s", cmd.Args[0])
	}
	e.pid.Store(int32(c.Process.Pid))
	defer e.pid.Store(0)

	done := make(chan struct{})
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		e.watch(ctx, c.Process, done)
	}()
	err := c.Wait()
	close(done)
	<-watched

	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 0, errors.Wrapf(err, "failed to wait for %s", cmd.Args[0])
	}
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return ee.ExitCode(), nil
}

// watch terminates p when the timeout expires or ctx is done, unless done is
// closed first.
func (e *Exec) watch(ctx context.Context, p *os.Process, done <-chan struct{}) {
	var expired <-chan time.Time
	if e.timeout > 0 {
		t := e.clk.NewTimer(e.timeout)
		defer t.Stop()
		expired = t.C()
	}

	select {
	case <-done:
		return
	case <-expired:
		logging.Warningf(ctx, "Timed out after %v; terminating process %d", e.timeout, p.Pid)
	case <-ctx.Done():
		logging.Warningf(ctx, "Terminating process %d: %v", p.Pid, ctx.Err())
	}
	p.Signal(unix.SIGTERM)

	grace := e.clk.NewTimer(KillGracePeriod)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C():
		logging.Warningf(ctx, "Process %d did not exit %v after SIGTERM; killing it", p.Pid, KillGracePeriod)
		p.Kill()
	}
}
