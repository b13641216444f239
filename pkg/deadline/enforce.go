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
	gocontext "context"
	goerrors "errors"
	"fmt"

	"github.com/acquirecloud/deadline/golibs/context"
	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/timeout"
)

// Func is a callable which may be enforced in process. The callable must
// treat its context as the interruption signal: when the deadline passes the
// context is closed and the callable is expected to give up at its next
// interruptible operation. A callable which ignores the context cannot be
// preempted - the enforcement is the best effort, as with any cooperative
// interruption.
type Func[T any] func(ctx gocontext.Context) (T, error)

// Wrap decorates fn with the deadline enforcement. The returned callable
// resolves spec on every invocation, so every call gets its own fresh budget.
func Wrap[T any](spec Spec, fn Func[T], opts ...Option[T]) Func[T] {
	return func(ctx gocontext.Context) (T, error) {
		return Enforce(ctx, spec, fn, opts...)
	}
}

// Enforce runs fn on the calling goroutine under the deadline described by
// spec. On normal completion the fn value is returned unchanged, the fn own
// error propagates unchanged as well. When the deadline passes first, the
// policy formed by opts is applied - the default ExceededError, the
// WithError value, or the OnTimeout fallback result.
func Enforce[T any](ctx gocontext.Context, spec Spec, fn Func[T], opts ...Option[T]) (T, error) {
	var zero T
	if fn == nil {
		return zero, fmt.Errorf("fn must be provided: %w", errors.ErrInvalid)
	}
	if ctx == nil {
		return zero, fmt.Errorf("ctx must be provided: %w", errors.ErrInvalid)
	}
	d, err := Resolve(spec)
	if err != nil {
		return zero, err
	}

	res := run(ctx, d, fn)
	if res.Kind == Expired {
		return NewPolicy(opts...).Expire(ctx, d)
	}
	if res.Kind == Failed {
		return zero, res.Err
	}
	return res.Value, nil
}

// run executes fn in place: no extra goroutine is created for the callable,
// the concurrency is only between the callable and the alarm which closes the
// callable's context at the deadline. The alarm state is owned by this
// invocation, so a late firing can never interrupt unrelated code.
func run[T any](ctx gocontext.Context, d Deadline, fn Func[T]) Result[T] {
	cctx, cancel := context.WithCancelError(ctx)
	defer cancel(nil)

	expired := &ExceededError{Deadline: d}
	alarm := timeout.VoidAlarm
	preExpired := d.Remaining() <= 0
	if preExpired {
		// the deadline is already in the past: the callable still starts,
		// with the context closed from the very beginning, and the policy
		// applies whatever the callable does
		cancel(expired)
	} else {
		alarm = timeout.Schedule(func() { cancel(expired) }, d.Remaining())
	}

	v, err := fn(cctx)
	// disarm before looking at the outcome, so the classification below and
	// the alarm state cannot diverge
	alarm.Cancel()

	if preExpired {
		return Result[T]{Kind: Expired, Err: expired}
	}
	if err == nil {
		// a returned value is never a timeout, even if the alarm won the
		// race with the disarm above
		return Result[T]{Kind: Completed, Value: v}
	}
	if cctx.Err() == error(expired) && interrupted(err, expired) {
		return Result[T]{Kind: Expired, Err: expired}
	}
	// the callable's own error is never swallowed or wrapped
	return Result[T]{Kind: Failed, Err: err}
}

// interrupted reports whether err looks like the callable's reaction to the
// closed context rather than its own failure
func interrupted(err error, expired *ExceededError) bool {
	return goerrors.Is(err, expired) ||
		goerrors.Is(err, gocontext.Canceled) ||
		goerrors.Is(err, gocontext.DeadlineExceeded) ||
		errors.Is(err, errors.ErrExceeded) ||
		errors.Is(err, errors.ErrCanceled)
}
