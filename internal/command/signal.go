// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

var selfName = filepath.Base(os.Args[0])

// InstallSignalHandler calls callback for every SIGINT and SIGTERM received.
// When callback returns true, cancel is called so that the running command
// unwinds through its cleanup; a signal arriving after that exits the
// process with status 1 immediately. Returning false keeps the run going,
// e.g. to let the harness finish collecting device logs after a bot timeout.
func InstallSignalHandler(out io.Writer, cancel context.CancelFunc, callback func(sig os.Signal) (stop bool)) {
	ch := make(chan os.Signal, 1)
	go func() {
		canceled := false
		for sig := range ch {
			fmt.Fprintf(out, "\n%s: Caught %v signal\n", selfName, sig)
			if canceled {
				os.Exit(StatusFailure)
			}
			if callback(sig) {
				cancel()
				canceled = true
			}
		}
	}()
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}

// Descendants returns all processes whose ancestry includes pid, parents
// before their children.
func Descendants(pid int32) ([]*process.Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	children := make(map[int32][]*process.Process)
	for _, p := range procs {
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		children[ppid] = append(children[ppid], p)
	}

	var desc []*process.Process
	queue := []int32{pid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			desc = append(desc, c)
			queue = append(queue, c.Pid)
		}
	}
	return desc, nil
}

// TerminateDescendants sends SIGTERM to every descendant of pid but not to
// pid itself. Failures for individual processes, which may have exited in
// the meantime, are written to out.
func TerminateDescendants(out io.Writer, pid int32) error {
	procs, err := Descendants(pid)
	if err != nil {
		return err
	}
	for _, p := range procs {
		if err := p.Terminate(); err != nil {
			fmt.Fprintf(out, "%s: Failed to terminate process %d: %v\n", selfName, p.Pid, err)
		}
	}
	return nil
}
