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
	"fmt"

	"github.com/acquirecloud/deadline/golibs/errors"
)

// ErrInvalidSpec is returned when a timeout spec cannot be resolved to a
// Deadline - it is malformed, unrecognized or describes a negative budget.
var ErrInvalidSpec = fmt.Errorf("invalid timeout spec: %w", errors.ErrInvalid)

// ExceededError is the default error reported when the deadline passes and no
// fallback is configured. It matches errors.ErrExceeded for errors.Is checks.
type ExceededError struct {
	// Deadline is the deadline that was missed
	Deadline Deadline

	// Message overwrites the default error text if not empty
	Message string
}

// Error implements the error interface
func (e *ExceededError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("deadline exceeded: the execution did not complete by %s", e.Deadline.At().Format("15:04:05.000"))
}

// Unwrap lets errors.Is(err, errors.ErrExceeded) recognize the class
func (e *ExceededError) Unwrap() error {
	return errors.ErrExceeded
}
