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
package journal

import (
	"testing"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/stretchr/testify/assert"
)

func TestQuery_PageLimit(t *testing.T) {
	limit, err := Query{}.PageLimit()
	assert.Nil(t, err)
	assert.Equal(t, DefaultPageSize, limit)

	limit, err = Query{Limit: 7}.PageLimit()
	assert.Nil(t, err)
	assert.Equal(t, 7, limit)

	limit, err = Query{Limit: MaxPageSize + 1}.PageLimit()
	assert.Nil(t, err)
	assert.Equal(t, MaxPageSize, limit)

	_, err = Query{Limit: -1}.PageLimit()
	assert.True(t, errors.Is(err, errors.ErrInvalid), "got %v", err)
}

func TestCompileMatch(t *testing.T) {
	match, err := CompileMatch("")
	assert.Nil(t, err)
	assert.True(t, match("anything"))

	match, err = CompileMatch("job.*")
	assert.Nil(t, err)
	assert.True(t, match("job.1"))
	assert.False(t, match("other"))

	_, err = CompileMatch("[bad")
	assert.True(t, errors.Is(err, errors.ErrInvalid))
}
