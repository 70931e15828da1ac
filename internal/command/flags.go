// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"strconv"
	"strings"
	"time"
)

// RepeatedFlag implements flag.Value around a function called for every
// occurrence of the flag, e.g. each -tast-var or -env-var.
type RepeatedFlag func(v string) error

func (f *RepeatedFlag) String() string { return "" }

// Set calls f with v.
func (f *RepeatedFlag) Set(v string) error { return (*f)(v) }

// ListFlag implements flag.Value to split a single value into a list, e.g.
// a gtest filter "a:b" into ["a", "b"].
type ListFlag struct {
	sep    string
	assign ListFlagAssignFunc
	def    []string
}

// ListFlagAssignFunc is called by ListFlag to store the parsed list.
type ListFlagAssignFunc func(vals []string)

// NewListFlag returns a ListFlag splitting on sep and storing the result
// through assign. def is assigned immediately.
func NewListFlag(sep string, assign ListFlagAssignFunc, def []string) *ListFlag {
	assign(def)
	return &ListFlag{sep: sep, assign: assign, def: def}
}

// String returns the default value joined by the separator, as shown in
// usage messages.
func (f *ListFlag) String() string { return strings.Join(f.def, f.sep) }

// Set splits v and assigns the result. An empty v assigns nil.
func (f *ListFlag) Set(v string) error {
	if v == "" {
		f.assign(nil)
		return nil
	}
	f.assign(strings.Split(v, f.sep))
	return nil
}

// DurationFlag implements flag.Value to read a duration as an integer count
// of units, e.g. "-timeout=3600" with units of time.Second.
type DurationFlag struct {
	units time.Duration
	dst   *time.Duration
}

// NewDurationFlag returns a DurationFlag storing into dst, which is set to
// def immediately.
func NewDurationFlag(units time.Duration, dst *time.Duration, def time.Duration) *DurationFlag {
	*dst = def
	return &DurationFlag{units: units, dst: dst}
}

func (f *DurationFlag) String() string {
	if f.dst == nil {
		return ""
	}
	return strconv.FormatInt(int64(*f.dst/f.units), 10)
}

// Set parses v as an integer number of units.
func (f *DurationFlag) Set(v string) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*f.dst = time.Duration(n) * f.units
	return nil
}

// CountFlag implements flag.Value counting how many times a boolean flag is
// given, e.g. "-v -v" yields 2.
type CountFlag int

func (f *CountFlag) String() string { return strconv.Itoa(int(*f)) }

// Set increments f for true values and resets it for false ones.
func (f *CountFlag) Set(v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if b {
		*f++
	} else {
		*f = 0
	}
	return nil
}

// IsBoolFlag allows the flag to be given without a value.
func (f *CountFlag) IsBoolFlag() bool { return true }

// SwitchFlag implements flag.Value as a valueless switch storing a fixed
// value, e.g. -no-flash storing false into the variable behind -flash.
type SwitchFlag struct {
	dst *bool
	val bool
}

// NewSwitchFlag returns a SwitchFlag storing val into dst when given.
func NewSwitchFlag(dst *bool, val bool) *SwitchFlag {
	return &SwitchFlag{dst: dst, val: val}
}

func (f *SwitchFlag) String() string { return "" }

// Set stores the fixed value when v is true and does nothing otherwise.
func (f *SwitchFlag) Set(v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if b {
		*f.dst = f.val
	}
	return nil
}

// IsBoolFlag allows the flag to be given without a value.
func (f *SwitchFlag) IsBoolFlag() bool { return true }
