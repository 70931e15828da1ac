// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package command contains helpers shared by the test_runner subcommands:
// flag values, passthrough argument splitting, exit statuses and signal
// handling.
package command

import (
	"fmt"
	"io"

	"go.chromium.org/chromeos/testrunner/errors"
)

// Exit statuses used for failures that happen before or instead of running
// the harness. Otherwise test_runner exits with the harness's status.
const (
	StatusFailure     = 1 // missing tool, failed to start the harness, DNS failure
	StatusConfigError = 2 // bad flags, the same status flag.Parse failures use
)

// StatusError is an error carrying the process exit status to use.
type StatusError struct {
	msg    string
	status int
	cause  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (status %v)", e.msg, e.status)
}

// Unwrap returns the error e was created from, if any.
func (e *StatusError) Unwrap() error { return e.cause }

// Status returns e's exit status.
func (e *StatusError) Status() int {
	return e.status
}

// NewStatusErrorf returns a StatusError with status and a formatted message.
func NewStatusErrorf(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{msg: fmt.Sprintf(format, args...), status: status}
}

// WithStatus wraps err so that WriteError exits with status.
func WithStatus(status int, err error) *StatusError {
	return &StatusError{msg: err.Error(), status: status, cause: err}
}

// WriteError writes err to w as a newline-terminated message and returns the
// exit status to use. Errors without a StatusError in their chain map to
// StatusFailure.
func WriteError(w io.Writer, err error) int {
	msg := err.Error()
	status := StatusFailure
	var se *StatusError
	if errors.As(err, &se) {
		msg, status = se.msg, se.status
	}
	if len(msg) > 0 && msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	io.WriteString(w, msg)
	return status
}
