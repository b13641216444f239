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

// Package cast contains conversion helpers between simple types.
package cast

import (
	"unsafe"
)

// StringToByteArray gets a string and turns it to []byte without extra memory allocations
//
// NOTE! The result slice must never be modified, the memory is shared with
// the string provided.
func StringToByteArray(v string) []byte {
	return unsafe.Slice(unsafe.StringData(v), len(v))
}

// ByteArrayToString turns a slice of bytes to string, without extra memory allocations
//
// NOTE! The buf must not be modified while the result string is in use.
func ByteArrayToString(buf []byte) string {
	return unsafe.String(unsafe.SliceData(buf), len(buf))
}

// Ptr returns the address of v
func Ptr[T any](v T) *T {
	return &v
}

// Value returns *p, or def if p == nil
func Value[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}
