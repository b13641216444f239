// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deadline runs callables under a time budget. A caller describes the
// budget by one of the Spec forms, the package resolves it to the absolute
// Deadline once, before the execution starts, and interrupts the callable via
// its context when the Deadline passes. What happens on the expiry is
// controlled by the Option(s) - the default ExceededError, a custom error, or
// a fallback callable.
package deadline

import (
	"fmt"
	"math"
	"time"
)

type (
	// Deadline is the absolute point in time after which an execution must
	// stop. The value is computed once by Resolve() and never re-derived.
	Deadline struct {
		at time.Time
	}

	// Spec describes a time budget in one of the accepted forms: In(),
	// Seconds(), At() or Parts. Exactly one form is resolved to a Deadline
	// before any execution begins.
	Spec interface {
		expiry(now time.Time) (time.Time, error)
	}

	// Parts describes the budget split into the hours, minutes and seconds
	// components. All the components default to zero, the all-zero value is
	// legal and means "expire immediately after the start".
	Parts struct {
		Hours   float64
		Minutes float64
		Seconds float64
	}

	inSpec  time.Duration
	secSpec float64
	atSpec  time.Time
)

// In returns the Spec for the duration offset from now
func In(d time.Duration) Spec {
	return inSpec(d)
}

// Seconds returns the Spec for the number of seconds (or fractions of a
// second) from now
func Seconds(s float64) Spec {
	return secSpec(s)
}

// At returns the Spec for the absolute instant t. An instant which is already
// in the past resolves to a Deadline with zero remaining time, the callable is
// still started then.
func At(t time.Time) Spec {
	return atSpec(t)
}

// Resolve normalizes the Spec into the absolute Deadline. A malformed or
// negative spec fails with ErrInvalidSpec.
func Resolve(s Spec) (Deadline, error) {
	return resolveAt(s, time.Now())
}

func resolveAt(s Spec, now time.Time) (Deadline, error) {
	if s == nil {
		return Deadline{}, fmt.Errorf("the spec must be provided: %w", ErrInvalidSpec)
	}
	at, err := s.expiry(now)
	if err != nil {
		return Deadline{}, err
	}
	return Deadline{at: at}, nil
}

// At returns the absolute instant of the deadline
func (d Deadline) At() time.Time {
	return d.at
}

// Remaining returns the time left until the deadline. The result is never
// negative, an expired deadline reports zero.
func (d Deadline) Remaining() time.Duration {
	r := time.Until(d.at)
	if r < 0 {
		return 0
	}
	return r
}

// Expired reports whether the deadline has already passed
func (d Deadline) Expired() bool {
	return !time.Now().Before(d.at)
}

// String implements fmt.Stringer
func (d Deadline) String() string {
	return fmt.Sprintf("{at: %s, remaining: %s}", d.at.Format(time.RFC3339Nano), d.Remaining())
}

func (s inSpec) expiry(now time.Time) (time.Time, error) {
	if s < 0 {
		return time.Time{}, fmt.Errorf("the duration %s is negative: %w", time.Duration(s), ErrInvalidSpec)
	}
	return now.Add(time.Duration(s)), nil
}

func (s secSpec) expiry(now time.Time) (time.Time, error) {
	d, err := secondsToDuration(float64(s))
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}

func (s atSpec) expiry(now time.Time) (time.Time, error) {
	t := time.Time(s)
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("the zero instant: %w", ErrInvalidSpec)
	}
	if t.Before(now) {
		// already in the past - zero remaining time, not a negative timer
		return now, nil
	}
	return t, nil
}

func (p Parts) expiry(now time.Time) (time.Time, error) {
	secs := p.Hours*3600 + p.Minutes*60 + p.Seconds
	if p.Hours < 0 || p.Minutes < 0 || p.Seconds < 0 {
		return time.Time{}, fmt.Errorf("the components {%v, %v, %v} must not be negative: %w",
			p.Hours, p.Minutes, p.Seconds, ErrInvalidSpec)
	}
	d, err := secondsToDuration(secs)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}

func secondsToDuration(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return 0, fmt.Errorf("the value %v cannot express a non-negative number of seconds: %w", s, ErrInvalidSpec)
	}
	if s > math.MaxInt64/float64(time.Second) {
		return math.MaxInt64, nil
	}
	return time.Duration(s * float64(time.Second)), nil
}

var _ Spec = Parts{}
