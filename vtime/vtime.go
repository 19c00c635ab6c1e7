// Package vtime models the virtual time of a discrete-event simulation:
// a nanosecond-resolution clock that only ever advances by dispatch, never
// by the wall clock.
package vtime

import (
	"fmt"
	"time"
)

// Duration is a non-negative span of virtual time, in nanoseconds.
type Duration int64

// Instant is a non-negative virtual-time instant, measured as a duration
// since simulation start.
type Instant int64

// Zero is the instant a simulation starts at, absent an explicit
// start time.
const Zero Instant = 0

// FromDuration converts a standard library duration to a virtual Duration.
// Panics if d is negative: a negative span is a contract violation at every
// call site that matters (scheduling, width, limits).
func FromDuration(d time.Duration) Duration {
	if d < 0 {
		panic(fmt.Sprintf("vtime: negative duration %s", d))
	}
	return Duration(d.Nanoseconds())
}

// FromNanos builds a Duration from a raw nanosecond count.
func FromNanos(ns int64) Duration {
	if ns < 0 {
		panic(fmt.Sprintf("vtime: negative duration %dns", ns))
	}
	return Duration(ns)
}

// Nanos returns the duration as a raw nanosecond count.
func (d Duration) Nanos() int64 { return int64(d) }

// Std converts back to a standard library duration, for interop with
// collaborators that want to print or compare against wall-clock values.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// InstantFromNanos builds an Instant from a raw nanosecond count since
// simulation start.
func InstantFromNanos(ns int64) Instant {
	if ns < 0 {
		panic(fmt.Sprintf("vtime: negative instant %dns", ns))
	}
	return Instant(ns)
}

// Nanos returns the instant as a raw nanosecond count since start.
func (i Instant) Nanos() int64 { return int64(i) }

// Add returns the instant reached by waiting d past i.
func (i Instant) Add(d Duration) Instant { return Instant(int64(i) + int64(d)) }

// Sub returns the duration between i and an earlier instant j. Panics if
// j is after i: spans of virtual time are never negative (spec §3).
func (i Instant) Sub(j Instant) Duration {
	if j > i {
		panic(fmt.Sprintf("vtime: Sub produced a negative duration: %d - %d", i, j))
	}
	return Duration(int64(i) - int64(j))
}

// Before reports whether i happens strictly before j.
func (i Instant) Before(j Instant) bool { return i < j }

// After reports whether i happens strictly after j.
func (i Instant) After(j Instant) bool { return i > j }

func (i Instant) String() string { return time.Duration(i).String() }
