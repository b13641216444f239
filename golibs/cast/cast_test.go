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
package cast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringBytes(t *testing.T) {
	assert.Equal(t, []byte("abc"), StringToByteArray("abc"))
	assert.Equal(t, "abc", ByteArrayToString([]byte("abc")))
	assert.Equal(t, "", ByteArrayToString(nil))
}

func TestPtr(t *testing.T) {
	p := Ptr(42)
	assert.Equal(t, 42, *p)
	assert.Equal(t, 42, Value(p, 1))
	assert.Equal(t, 1, Value[int](nil, 1))
}
