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
	"container/heap"
	"sync"
	"time"
)

type (
	// Alarm allows to cancel a future execution request made by Schedule()
	Alarm interface {
		// Cancel revokes the future execution. It is a no-op if the function
		// has already been started or the alarm was canceled before.
		Cancel()
	}

	scheduler struct {
		lock        sync.Mutex
		wakeCh      chan struct{}
		pending     *alarmHeap
		watchers    int
		maxWatchers int
		idleTimeout time.Duration
	}

	alarm struct {
		s     *scheduler
		f     func()
		fireT time.Time
		idx   int
	}

	alarmHeap []*alarm

	voidAlarm struct{}
)

var shared = newScheduler()

// VoidAlarm may be used to initialize an Alarm variable, so it can be canceled
// without checking for nil
var VoidAlarm Alarm = voidAlarm{}

// Schedule requests the future execution of the function f when the timeout
// passes. The returned Alarm may be used for canceling the request while the
// execution is not started yet.
func Schedule(f func(), timeout time.Duration) Alarm {
	return shared.schedule(f, timeout)
}

func newScheduler() *scheduler {
	s := new(scheduler)
	s.pending = &alarmHeap{}
	s.maxWatchers = 10
	s.wakeCh = make(chan struct{}, s.maxWatchers)
	s.idleTimeout = time.Second * 30
	heap.Init(s.pending)
	return s
}

func (s *scheduler) schedule(f func(), timeout time.Duration) Alarm {
	a := &alarm{s: s, f: f, fireT: time.Now().Add(timeout), idx: -1}
	if f == nil {
		return a
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	heap.Push(s.pending, a)
	if s.watchers == 0 {
		s.watchers++
		go s.watcher()
	} else {
		s.wakeOne()
	}
	return a
}

// Cancel is part of the Alarm interface
func (a *alarm) Cancel() {
	s := a.s
	s.lock.Lock()
	defer s.lock.Unlock()

	if a.idx < 0 {
		return
	}
	a.f = nil
	heap.Remove(s.pending, a.idx)
	if s.watchers > 0 {
		s.wakeOne()
	}
}

func (s *scheduler) wakeOne() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// watcher runs fired alarms one by one. The first watcher stays warm for the
// idleTimeout, the extra ones, spawned on a burst, go away as soon as there is
// nothing to run.
func (s *scheduler) watcher() {
	idleRounds := 0
	var f func()
	for {
		if f != nil {
			f()
			f = nil
			idleRounds = 0
		} else {
			idleRounds++
		}

		var wait time.Duration
		s.lock.Lock()
		if s.pending.Len() == 0 {
			if idleRounds > 1 {
				s.watchers--
				s.lock.Unlock()
				return
			}
			wait = s.idleTimeout
		} else {
			fireT := (*s.pending)[0].fireT
			now := time.Now()
			if !now.Before(fireT) {
				a := heap.Pop(s.pending).(*alarm)
				f = a.f
				if s.pending.Len() > 0 && !now.Before((*s.pending)[0].fireT) && s.watchers < s.maxWatchers {
					// more alarms are due, get some help
					s.watchers++
					go s.watcher()
				}
				s.lock.Unlock()
				continue
			}

			wait = fireT.Sub(now)
			if s.watchers > 1 {
				if idleRounds > 1 {
					s.watchers--
					s.lock.Unlock()
					return
				}
				if wait > s.idleTimeout {
					wait = s.idleTimeout
				}
			}
		}
		s.lock.Unlock()

		tmr := time.NewTimer(wait)
		select {
		case <-tmr.C:
		case <-s.wakeCh:
			if !tmr.Stop() {
				<-tmr.C
			}
			idleRounds = 0
		}
	}
}

func (h *alarmHeap) Len() int {
	return len(*h)
}

func (h *alarmHeap) Less(i, j int) bool {
	return (*h)[i].fireT.Before((*h)[j].fireT)
}

func (h *alarmHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
	(*h)[i].idx, (*h)[j].idx = i, j
}

func (h *alarmHeap) Push(x any) {
	a := x.(*alarm)
	a.idx = h.Len()
	*h = append(*h, a)
}

func (h *alarmHeap) Pop() any {
	last := h.Len() - 1
	a := (*h)[last]
	(*h)[last] = nil
	*h = (*h)[:last]
	a.idx = -1
	return a
}

func (voidAlarm) Cancel() {}
