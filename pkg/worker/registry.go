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
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"
)

// handler adapts a registered typed function to the wire form: the argument
// comes in as gob bytes, the result leaves as gob bytes
type handler struct {
	name string
	call func(ctx context.Context, argGob []byte) ([]byte, error)
}

var (
	regMx    sync.Mutex
	handlers = map[string]*handler{}
)

// Register makes fn callable in an isolated worker under the given name. The
// registration must happen at the package init time, so the re-executed
// worker copy of the binary knows the same set of functions as the parent.
// Register panics on a duplicate name - the registry is the process-wide
// contract between the two sides.
func Register[A, R any](name string, fn func(ctx context.Context, arg A) (R, error)) {
	if name == "" || fn == nil {
		panic("worker.Register requires a non-empty name and a non-nil function")
	}
	h := &handler{name: name}
	h.call = func(ctx context.Context, argGob []byte) ([]byte, error) {
		var arg A
		if err := gob.NewDecoder(bytes.NewReader(argGob)).Decode(&arg); err != nil {
			return nil, fmt.Errorf("could not decode the argument of %q: %v: %w", name, err, ErrNotSerializable)
		}
		res, err := fn(ctx, arg)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err = gob.NewEncoder(&buf).Encode(&res); err != nil {
			return nil, fmt.Errorf("could not encode the result of %q: %v: %w", name, err, ErrResultNotSerializable)
		}
		return buf.Bytes(), nil
	}

	regMx.Lock()
	defer regMx.Unlock()
	if _, ok := handlers[name]; ok {
		panic(fmt.Sprintf("the worker function %q is already registered", name))
	}
	handlers[name] = h
}

func lookup(name string) *handler {
	regMx.Lock()
	defer regMx.Unlock()
	return handlers[name]
}

func encodeArg[A any](name string, arg A) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&arg); err != nil {
		return nil, fmt.Errorf("could not encode the argument of %q: %v: %w", name, err, ErrNotSerializable)
	}
	return buf.Bytes(), nil
}

func decodeResult[R any](name string, resGob []byte) (R, error) {
	var res R
	if err := gob.NewDecoder(bytes.NewReader(resGob)).Decode(&res); err != nil {
		return res, fmt.Errorf("could not decode the result of %q: %v: %w", name, err, ErrResultNotSerializable)
	}
	return res, nil
}
