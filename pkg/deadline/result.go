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

type (
	// Kind describes how an enforced execution ended
	Kind int

	// Result is the outcome of one enforced execution. It is created fresh
	// per invocation and consumed right away, never shared between the calls.
	Result[T any] struct {
		// Kind tags the outcome variant
		Kind Kind
		// Value holds the callable result for the Completed outcome
		Value T
		// Err holds the callable error for Failed, or the expiry error for Expired
		Err error
	}
)

const (
	// Completed - the callable returned a value before the deadline
	Completed Kind = iota
	// Failed - the callable returned its own error before the deadline
	Failed
	// Expired - the deadline passed while the callable was still running
	Expired
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Expired:
		return "Expired"
	}
	return "Unknown"
}
