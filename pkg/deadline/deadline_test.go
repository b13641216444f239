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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_EquivalentForms(t *testing.T) {
	now := time.Now()
	specs := []Spec{
		In(5 * time.Second),
		Seconds(5),
		Parts{Seconds: 5},
		Parts{Minutes: 1.0 / 60, Seconds: 4},
		At(now.Add(5 * time.Second)),
	}
	for _, s := range specs {
		d, err := resolveAt(s, now)
		assert.Nil(t, err)
		diff := d.At().Sub(now.Add(5 * time.Second))
		assert.True(t, diff.Abs() < time.Millisecond, "spec %v resolved %s off", s, diff)
	}
}

func TestResolve_PastInstant(t *testing.T) {
	d, err := Resolve(At(time.Now().Add(-time.Hour)))
	assert.Nil(t, err)
	assert.Equal(t, time.Duration(0), d.Remaining())
	assert.True(t, d.Expired())
}

func TestResolve_ZeroParts(t *testing.T) {
	now := time.Now()
	d, err := resolveAt(Parts{}, now)
	assert.Nil(t, err)
	assert.Equal(t, now, d.At())
}

func TestResolve_Invalid(t *testing.T) {
	for _, s := range []Spec{
		nil,
		In(-time.Second),
		Seconds(-0.1),
		Seconds(math.NaN()),
		Seconds(math.Inf(1)),
		Parts{Hours: -1},
		Parts{Minutes: 1, Seconds: -2},
		At(time.Time{}),
	} {
		_, err := Resolve(s)
		assert.ErrorIs(t, err, ErrInvalidSpec, "spec %v must not resolve", s)
	}
}

func TestDeadline_Remaining(t *testing.T) {
	d, err := Resolve(In(time.Hour))
	assert.Nil(t, err)
	assert.True(t, d.Remaining() > 59*time.Minute)
	assert.False(t, d.Expired())

	d, err = Resolve(Seconds(0))
	assert.Nil(t, err)
	assert.Equal(t, time.Duration(0), d.Remaining())
}
