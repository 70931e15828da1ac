// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command_test

import (
	"context"
	"io"
	"os"
	"os/exec"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"go.chromium.org/chromeos/testrunner/internal/command"
)

func TestTerminateDescendants(t *testing.T) {
	// sh stays the parent of sleep thanks to the trailing wait.
	cmd := exec.Command("sh", "-c", "sleep 60 & wait")
	if err := cmd.Start(); err != nil {
		t.Fatal("Failed to start sh: ", err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	pid := int32(cmd.Process.Pid)
	deadline := time.Now().Add(10 * time.Second)
	for {
		procs, err := command.Descendants(pid)
		if err != nil {
			t.Fatal("Descendants failed: ", err)
		}
		if len(procs) > 0 {
			break
		}
		if time.Now().After(deadline) {
			cmd.Process.Kill()
			t.Fatal("sleep did not show up as a descendant of sh")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := command.TerminateDescendants(io.Discard, pid); err != nil {
		t.Fatal("TerminateDescendants failed: ", err)
	}

	// sh exits once its only child is gone.
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		cmd.Process.Kill()
		t.Fatal("sh did not exit after its child was terminated")
	}
}

func TestInstallSignalHandlerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan os.Signal, 1)
	command.InstallSignalHandler(io.Discard, cancel, func(sig os.Signal) bool {
		got <- sig
		return true
	})
	if err := unix.Kill(os.Getpid(), unix.SIGINT); err != nil {
		t.Fatal("Failed to send SIGINT: ", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Context was not canceled after SIGINT")
	}
	if sig := <-got; sig != unix.SIGINT {
		t.Errorf("Callback got %v; want %v", sig, unix.SIGINT)
	}
}
