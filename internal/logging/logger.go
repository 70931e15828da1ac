// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logging routes test runner logs through context.Context.
//
// main attaches a Logger writing to stderr; packages below it log with
// logging.Infof(ctx, ...) and friends without knowing where logs end up.
package logging

import (
	"time"
)

// Level is a logging level. Larger values are more important.
type Level int

const (
	// LevelDebug is enabled by -verbose.
	LevelDebug Level = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarning marks conditions that do not fail the run but likely
	// affect its results, e.g. a non-zero harness exit with passing tests.
	LevelWarning
)

// String returns the upper-case name of l.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	}
	return "UNKNOWN"
}

// Logger consumes logs sent via a context. See AttachLogger.
type Logger interface {
	Log(level Level, ts time.Time, msg string)
}

// MultiLogger copies logs to a fixed set of loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger writing to loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log copies a log to every logger.
func (ml *MultiLogger) Log(level Level, ts time.Time, msg string) {
	for _, l := range ml.loggers {
		l.Log(level, ts, msg)
	}
}
