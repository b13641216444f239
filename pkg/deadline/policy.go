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
	"context"
)

type (
	// Policy describes what happens when the deadline passes: either a
	// configured error is returned (the default), or a fallback callable is
	// invoked and its result becomes the result of the enforced call.
	// Exactly one variant is active per invocation.
	Policy[T any] struct {
		raise    error
		message  string
		fallback Func[T]
	}

	// Option configures the expiry Policy of an enforced call
	Option[T any] func(p *Policy[T])
)

// WithError makes the expiry return err instead of the default ExceededError
func WithError[T any](err error) Option[T] {
	return func(p *Policy[T]) {
		p.raise = err
	}
}

// WithMessage overwrites the text of the default ExceededError
func WithMessage[T any](msg string) Option[T] {
	return func(p *Policy[T]) {
		p.message = msg
	}
}

// OnTimeout makes the expiry invoke fn instead of returning an error. The
// fallback arguments travel in the fn closure. If both OnTimeout and
// WithError are provided, the fallback wins - the caller asked for work to
// run, not just for an error.
func OnTimeout[T any](fn Func[T]) Option[T] {
	return func(p *Policy[T]) {
		p.fallback = fn
	}
}

// NewPolicy normalizes the options into one active Policy variant
func NewPolicy[T any](opts ...Option[T]) Policy[T] {
	var p Policy[T]
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Expire applies the policy. The fallback is invoked synchronously on the
// calling goroutine with the caller's original context (not the expired one),
// and its error, if any, propagates unmodified.
func (p Policy[T]) Expire(ctx context.Context, d Deadline) (T, error) {
	if p.fallback != nil {
		return p.fallback(ctx)
	}
	var zero T
	if p.raise != nil {
		return zero, p.raise
	}
	return zero, &ExceededError{Deadline: d, Message: p.message}
}
