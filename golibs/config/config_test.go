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
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/stretchr/testify/assert"
)

type (
	innerCfg struct {
		Val    int
		StrPtr *string `json:"haha"`
	}

	testCfg struct {
		Field  int
		Name   string
		InnerS *innerCfg
	}
)

func TestLoadFromFile(t *testing.T) {
	e := NewEnricher(testCfg{Field: 1})
	assert.Nil(t, e.LoadFromFile(""))
	assert.True(t, errors.Is(e.LoadFromFile("no-such-file.yaml"), errors.ErrNotExist))

	fn := filepath.Join(t.TempDir(), "cfg.yaml")
	assert.Nil(t, os.WriteFile(fn, []byte("name: boo\ninnerS:\n  val: 42\n"), 0644))
	assert.Nil(t, e.LoadFromFile(fn))

	cfg := e.Value()
	assert.Equal(t, 1, cfg.Field)
	assert.Equal(t, "boo", cfg.Name)
	assert.Equal(t, 42, cfg.InnerS.Val)
}

func TestApplyOther(t *testing.T) {
	e := NewEnricher(testCfg{Field: 1, Name: "def", InnerS: &innerCfg{Val: 5}})
	o := NewEnricher(testCfg{Name: "over", InnerS: &innerCfg{Val: 7}})
	assert.Nil(t, e.ApplyOther(o))

	cfg := e.Value()
	assert.Equal(t, 1, cfg.Field)
	assert.Equal(t, "over", cfg.Name)
	assert.Equal(t, 7, cfg.InnerS.Val)
}

func TestApplyEnvVariables(t *testing.T) {
	t.Setenv("TSTCFG_FIELD", "33")
	t.Setenv("TSTCFG_NAME", "plain string")
	t.Setenv("TSTCFG_INNERS_VAL", "55")
	t.Setenv("TSTCFG_INNERS_HAHA", "\"quoted\"")

	e := NewEnricher(testCfg{})
	assert.Nil(t, e.ApplyEnvVariables("TstCfg", "_"))

	cfg := e.Value()
	assert.Equal(t, 33, cfg.Field)
	assert.Equal(t, "plain string", cfg.Name)
	assert.Equal(t, 55, cfg.InnerS.Val)
	assert.Equal(t, "quoted", *cfg.InnerS.StrPtr)
}

func TestApplyEnvVariables_UnknownField(t *testing.T) {
	t.Setenv("TSTCFG_NOSUCH", "1")
	e := NewEnricher(testCfg{})
	assert.True(t, errors.Is(e.ApplyEnvVariables("TSTCFG", "_"), errors.ErrInvalid))
}
