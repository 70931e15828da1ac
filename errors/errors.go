// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package errors constructs errors that carry the location where they were
// created.
//
// Use New or Errorf for fresh errors and Wrap or Wrapf to add context to an
// error returned by a callee:
//
//	errors.Errorf("unknown board %q", board)
//	errors.Wrapf(err, "failed to write device script to %s", dir)
//
// Formatting an error with "%+v" prints the whole chain with stack traces,
// which is what the test runner logs at debug level on failures.
//
// Errors returned by this package implement Unwrap, so the standard
// errors.Is and errors.As (re-exported here) work across wrapped chains.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"go.chromium.org/chromeos/testrunner/errors/stack"
)

// chainError is an error with a message, the stack where it was created and
// an optional cause.
type chainError struct {
	msg   string
	stk   stack.Stack
	cause error
}

func (e *chainError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap returns the error wrapped by e, or nil.
func (e *chainError) Unwrap() error {
	return e.cause
}

// Format implements fmt.Formatter. The "%+v" verb prints the error chain
// with a stack trace for every link.
func (e *chainError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, formatChain(e))
		return
	}
	io.WriteString(s, e.Error())
}

func formatChain(err error) string {
	var links []string
	for err != nil {
		ce, ok := err.(*chainError)
		if !ok {
			links = append(links, err.Error()+"\n\tat ???")
			break
		}
		links = append(links, fmt.Sprintf("%s\n%v", ce.msg, ce.stk))
		err = ce.cause
	}
	return strings.Join(links, "\n")
}

// New returns an error with msg, recording the caller's location.
func New(msg string) error {
	return &chainError{msg: msg, stk: stack.New(1)}
}

// Errorf is like New but formats the message with fmt.Sprintf.
func Errorf(format string, args ...interface{}) error {
	return &chainError{msg: fmt.Sprintf(format, args...), stk: stack.New(1)}
}

// Wrap returns an error with msg wrapping cause. A nil cause makes it
// equivalent to New.
func Wrap(cause error, msg string) error {
	return &chainError{msg: msg, stk: stack.New(1), cause: cause}
}

// Wrapf is like Wrap but formats the message with fmt.Sprintf.
func Wrapf(cause error, format string, args ...interface{}) error {
	return &chainError{msg: fmt.Sprintf(format, args...), stk: stack.New(1), cause: cause}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error { return stderrors.Unwrap(err) }
