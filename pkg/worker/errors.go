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
package worker

import (
	"fmt"

	"github.com/acquirecloud/deadline/golibs/errors"
)

var (
	// ErrNotSerializable is returned when a callable or its argument cannot
	// cross the worker boundary - the function is not registered, or the
	// argument is not gob-encodable. The error is reported before any worker
	// process is started.
	ErrNotSerializable = fmt.Errorf("the callable or its argument cannot cross the worker boundary: %w", errors.ErrInvalid)

	// ErrResultNotSerializable is returned when the callable has run in the
	// worker, but its result could not be carried back to the caller
	ErrResultNotSerializable = fmt.Errorf("the callable result cannot cross the worker boundary: %w", errors.ErrDataLoss)

	// ErrUnsupportedContext is returned when the isolated enforcement is
	// requested from inside a worker process. The worker dispatch may only be
	// driven by the primary process, nesting it would re-execute the binary
	// recursively.
	ErrUnsupportedContext = fmt.Errorf("isolated enforcement cannot be requested from a worker process: %w", errors.ErrConflict)
)
