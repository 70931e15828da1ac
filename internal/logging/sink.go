// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z "

// SinkLogger filters logs by level and hands them to a Sink.
type SinkLogger struct {
	level     Level
	timestamp bool
	sink      Sink
}

// NewSinkLogger returns a SinkLogger passing logs of at least level to sink.
// If timestamp is true, each message is prefixed with its UTC time.
func NewSinkLogger(level Level, timestamp bool, sink Sink) *SinkLogger {
	return &SinkLogger{level: level, timestamp: timestamp, sink: sink}
}

// Log implements Logger. Warnings are prefixed with their level so they
// stand out in bot logs.
func (l *SinkLogger) Log(level Level, ts time.Time, msg string) {
	if level < l.level {
		return
	}
	if level >= LevelWarning {
		msg = level.String() + ": " + msg
	}
	if l.timestamp {
		msg = ts.UTC().Format(timestampLayout) + msg
	}
	l.sink.Log(msg)
}

// Sink is a destination of formatted log lines.
type Sink interface {
	Log(msg string)
}

// WriterSink writes one line per log to an io.Writer. Writes are serialized.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Log implements Sink.
func (s *WriterSink) Log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, msg)
}
