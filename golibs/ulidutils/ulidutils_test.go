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
package ulidutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()
	assert.NotEqual(t, id1, id2)
	assert.True(t, id1 < id2)
}

func TestNextID(t *testing.T) {
	id := NewID()
	next := NextID(id)
	assert.True(t, id < next)
	assert.Panics(t, func() {
		NextID("not a ulid")
	})
}

func TestNewUUID(t *testing.T) {
	assert.NotEqual(t, NewUUID(), NewUUID())
}
