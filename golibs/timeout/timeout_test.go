// Copyright 2023 The acquirecloud Authors
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
package timeout

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleNil(t *testing.T) {
	a := Schedule(nil, time.Millisecond)
	assert.Equal(t, -1, a.(*alarm).idx)
	a.Cancel()
	a.Cancel()
}

func TestSchedule(t *testing.T) {
	s := newScheduler()
	var called int32
	s.schedule(func() { atomic.AddInt32(&called, 1) }, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&called))
	assert.Equal(t, 1, s.watchers)

	a := s.schedule(func() { atomic.AddInt32(&called, 1) }, 10*time.Millisecond)
	a.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&called))
	assert.Equal(t, 1, s.watchers)

	s.schedule(func() { atomic.AddInt32(&called, 1) }, 0)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&called))
}

func TestScheduleBurst(t *testing.T) {
	s := newScheduler()
	var called int32
	for i := 0; i < 1000; i++ {
		s.schedule(func() { atomic.AddInt32(&called, 1) }, time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1000), atomic.LoadInt32(&called))
	assert.Equal(t, s.maxWatchers, s.watchers)
}

func TestWatchersGoAway(t *testing.T) {
	s := newScheduler()
	s.idleTimeout = 100 * time.Millisecond
	var called int32
	for i := 0; i < 1000; i++ {
		s.schedule(func() { atomic.AddInt32(&called, 1) }, time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1000), atomic.LoadInt32(&called))

	time.Sleep(300 * time.Millisecond)
	s.lock.Lock()
	defer s.lock.Unlock()
	assert.Equal(t, 0, s.watchers)
}

func TestCancelMany(t *testing.T) {
	s := newScheduler()
	var called int32
	var aa []Alarm
	for i := 0; i < 100; i++ {
		a := s.schedule(func() { atomic.AddInt32(&called, 1) }, (10+time.Duration(i))*time.Millisecond)
		if i&1 == 1 {
			aa = append(aa, a)
		}
	}
	assert.Equal(t, 50, len(aa))
	for _, a := range aa {
		a.Cancel()
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(50), atomic.LoadInt32(&called))
}

func TestVoidAlarm(t *testing.T) {
	a := VoidAlarm
	a.Cancel()
	a.Cancel()
}
