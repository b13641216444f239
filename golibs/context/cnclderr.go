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
package context

import (
	ctx "context"
	"sync"
	"time"

	"github.com/acquirecloud/deadline/golibs/errors"
)

type (
	cancelErrCtx struct {
		parent ctx.Context
		ch     chan struct{}
		err    error
		mu     sync.Mutex
	}

	// CancelErrFunc closes the context created by WithCancelError with the
	// error provided. If err is nil, Err() of the closed context will report
	// errors.ErrClosed. Only the first call matters, the others are ignored.
	CancelErrFunc func(err error)
)

var _ ctx.Context = (*cancelErrCtx)(nil)

// WithCancelError creates a context which may be canceled with a custom error.
// The CancelErrFunc must always be called when the context is not used anymore.
func WithCancelError(parent ctx.Context) (ctx.Context, CancelErrFunc) {
	if parent == nil {
		panic("cannot create context from nil parent")
	}
	c := &cancelErrCtx{parent: parent, ch: make(chan struct{})}
	// watchdog propagates the parent cancellation
	go func() {
		select {
		case <-parent.Done():
			c.cancel(parent.Err())
		case <-c.ch:
		}
	}()
	return c, func(err error) { c.cancel(err) }
}

func (c *cancelErrCtx) Deadline() (deadline time.Time, ok bool) {
	return c.parent.Deadline()
}

func (c *cancelErrCtx) Done() <-chan struct{} {
	return c.ch
}

func (c *cancelErrCtx) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *cancelErrCtx) Value(key any) any {
	return c.parent.Value(key)
}

func (c *cancelErrCtx) cancel(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.ch:
		// already closed
		return
	default:
	}

	c.err = err
	if c.err == nil {
		c.err = errors.ErrClosed
	}
	close(c.ch)
}
