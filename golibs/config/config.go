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

// Package config helps to build configuration structures from the
// defaults, configuration files and the environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/logging"
	"github.com/ghodss/yaml"
)

type (
	// Enricher keeps a structure value of the type T and allows to enrich it
	// from different sources - a YAML or JSON file, another enricher value or
	// the environment variables.
	//
	// The following contract is applied to the type T:
	//   - only the exported fields are updated
	//   - a field may have a json annotation, then the json name is used as
	//     an alias for addressing the field
	//   - the field names are case-insensitive for the addressing purposes
	Enricher[T any] interface {
		// LoadFromFile loads the value from the YAML or JSON file. If the
		// fileName is empty the function does nothing. If the file doesn't
		// exist, errors.ErrNotExist is returned.
		LoadFromFile(fileName string) error

		// ApplyOther applies the value of the other enricher created for the
		// same type T. The non-zero fields of the other value overwrite the
		// fields of the current one.
		ApplyOther(other Enricher[T]) error

		// ApplyEnvVariables scans the environment variables and applies the
		// ones which start from prefix. The rest of a variable name is split
		// by sep and forms the path to the target field:
		//
		//	PREFIX_FIELD, PREFIX_INNER_FIELD ...
		//
		// The variable values are parsed as JSON, a value which is not a
		// valid JSON is applied as a plain string.
		ApplyEnvVariables(prefix, sep string) error

		// Value returns the current value of the enricher
		Value() T
	}

	enricher[T any] struct {
		log logging.Logger
		val T
	}
)

// NewEnricher creates an Enricher[T] initialized by the value provided
func NewEnricher[T any](val T) Enricher[T] {
	return &enricher[T]{log: logging.NewLogger("config.Enricher"), val: val}
}

func (e *enricher[T]) LoadFromFile(fileName string) error {
	if fileName == "" {
		return nil
	}
	buf, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("the file %s: %w", fileName, errors.ErrNotExist)
		}
		return fmt.Errorf("could not read the file %s: %w", fileName, err)
	}
	// yaml.Unmarshal handles both YAML and JSON content and respects
	// the json field annotations
	if err = yaml.Unmarshal(buf, &e.val); err != nil {
		return fmt.Errorf("could not unmarshal the file %s: %w", fileName, err)
	}
	return nil
}

func (e *enricher[T]) ApplyOther(other Enricher[T]) error {
	oVal := other.Value()
	merge(reflect.ValueOf(&e.val).Elem(), reflect.ValueOf(oVal))
	return nil
}

func (e *enricher[T]) ApplyEnvVariables(prefix, sep string) error {
	prefix = strings.ToUpper(prefix + sep)
	for _, kv := range os.Environ() {
		idx := strings.Index(kv, "=")
		name, value := kv[:idx], kv[idx+1:]
		if !strings.HasPrefix(strings.ToUpper(name), prefix) {
			continue
		}
		path := strings.Split(name[len(prefix):], sep)
		if err := e.applyValue(path, value); err != nil {
			return fmt.Errorf("could not apply the variable %s: %w", name, err)
		}
		e.log.Debugf("applied the environment variable %s", name)
	}
	return nil
}

func (e *enricher[T]) Value() T {
	return e.val
}

func (e *enricher[T]) applyValue(path []string, value string) error {
	fld := reflect.ValueOf(&e.val).Elem()
	for _, p := range path {
		for fld.Kind() == reflect.Pointer {
			if fld.IsNil() {
				fld.Set(reflect.New(fld.Type().Elem()))
			}
			fld = fld.Elem()
		}
		if fld.Kind() != reflect.Struct {
			return fmt.Errorf("the path element %q is not addressable: %w", p, errors.ErrInvalid)
		}
		fld = fieldByAlias(fld, p)
		if !fld.IsValid() {
			return fmt.Errorf("unknown field %q: %w", p, errors.ErrInvalid)
		}
	}
	for fld.Kind() == reflect.Pointer {
		if fld.IsNil() {
			fld.Set(reflect.New(fld.Type().Elem()))
		}
		fld = fld.Elem()
	}
	if err := json.Unmarshal([]byte(value), fld.Addr().Interface()); err != nil {
		if fld.Kind() == reflect.String {
			fld.SetString(value)
			return nil
		}
		return fmt.Errorf("could not parse the value %q: %w", value, errors.ErrInvalid)
	}
	return nil
}

// fieldByAlias finds the exported struct field by its name or the json
// annotation name, case-insensitive
func fieldByAlias(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if strings.EqualFold(sf.Name, name) {
			return v.Field(i)
		}
		if alias, _, _ := strings.Cut(sf.Tag.Get("json"), ","); alias != "" && strings.EqualFold(alias, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// merge overwrites dst fields by the non-zero fields of src. The structures
// are merged deeply, other kinds are assigned as a whole.
func merge(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Struct:
		for i := 0; i < src.NumField(); i++ {
			if src.Type().Field(i).IsExported() {
				merge(dst.Field(i), src.Field(i))
			}
		}
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		merge(dst.Elem(), src.Elem())
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}
