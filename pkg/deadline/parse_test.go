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
package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse_Durations(t *testing.T) {
	now := time.Now()
	for text, want := range map[string]time.Duration{
		"5":         5 * time.Second,
		"2.5":       2500 * time.Millisecond,
		"5s":        5 * time.Second,
		"250ms":     250 * time.Millisecond,
		"1h30m":     90 * time.Minute,
		"1h 30m":    90 * time.Minute,
		"1h 30m 5s": 90*time.Minute + 5*time.Second,
		"2 min":     2 * time.Minute,
		"1.5h":      90 * time.Minute,
		"1:30":      90 * time.Second,
		"1:30:05":   time.Hour + 30*time.Minute + 5*time.Second,
	} {
		s, err := Parse(text)
		assert.Nil(t, err, "could not parse %q", text)
		d, err := resolveAt(s, now)
		assert.Nil(t, err, "could not resolve %q", text)
		diff := d.At().Sub(now.Add(want))
		assert.True(t, diff.Abs() < time.Millisecond, "%q resolved %s off the expected %s", text, diff, want)
	}
}

func TestParse_Absolute(t *testing.T) {
	s, err := Parse("@2030-01-02T15:04:05Z")
	assert.Nil(t, err)
	d, err := Resolve(s)
	assert.Nil(t, err)
	assert.Equal(t, time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC).Unix(), d.At().Unix())

	s, err = Parse("@2030-01-02T15:04:05")
	assert.Nil(t, err)
	_, err = Resolve(s)
	assert.Nil(t, err)
}

func TestParse_Invalid(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"abc",
		"5x",
		"1h abc",
		"5 5",
		"@tomorrow",
		"1:xx",
	} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrInvalidSpec, "the text %q must not be parsed", text)
	}
}

func TestParse_NegativeFailsOnResolve(t *testing.T) {
	s, err := Parse("-5")
	assert.Nil(t, err)
	_, err = Resolve(s)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}
