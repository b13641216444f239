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
	"time"
)

// Sleep blocks the current goroutine for the duration d, or until the
// context is closed, whatever happens first. It returns the context error
// if the sleep was interrupted, or nil if the whole duration passed.
func Sleep(c ctx.Context, d time.Duration) error {
	if d <= 0 {
		return c.Err()
	}
	tmr := time.NewTimer(d)
	defer tmr.Stop()
	select {
	case <-c.Done():
		return c.Err()
	case <-tmr.C:
		return nil
	}
}
