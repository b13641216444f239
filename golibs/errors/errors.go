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
package errors

import (
	"errors"
)

var (
	// ErrNotExist is returned when a requested object doesn't exist
	ErrNotExist = errors.New("the object doesn't exist")

	// ErrExist is returned when a created object already exists
	ErrExist = errors.New("the object already exists")

	// ErrInvalid is returned when a provided value doesn't meet the contract
	ErrInvalid = errors.New("the value is invalid")

	// ErrExceeded is returned when a time budget for an operation is exhausted
	ErrExceeded = errors.New("the deadline is exceeded")

	// ErrCanceled is returned when an operation is interrupted before its completion
	ErrCanceled = errors.New("the operation is canceled")

	// ErrConflict is returned when an operation cannot be run in the current state
	ErrConflict = errors.New("the operation conflicts with the current state")

	// ErrDataLoss is returned when a value cannot be carried over without losses
	ErrDataLoss = errors.New("the data cannot be transferred without a loss")

	// ErrCommunication is returned on a transport-level problem
	ErrCommunication = errors.New("communication error")

	// ErrUnimplemented is returned when the functionality is not supported
	ErrUnimplemented = errors.New("the functionality is not implemented")

	// ErrInternal is returned when an unexpected internal problem is found
	ErrInternal = errors.New("internal error")

	// ErrClosed is returned when the object is already closed
	ErrClosed = errors.New("the object is closed")
)

// Is reports whether err matches the target class. In addition to the standard
// errors.Is behavior it recognizes gRPC code-based errors, so an error received
// from a remote or an isolated process may be compared with the classes above.
func Is(err, target error) bool {
	if errors.Is(err, target) {
		return true
	}
	if isGRPCError(err) {
		return errors.Is(FromGRPCError(err), target)
	}
	return false
}

// As is the standard errors.As, re-exported so the callers don't need two
// errors imports
func As(err error, target any) bool {
	return errors.As(err, target)
}
