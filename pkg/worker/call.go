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
	gocontext "context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/logging"
	"github.com/acquirecloud/deadline/pkg/deadline"
	"github.com/google/uuid"
)

// killGrace is how long past the budget the parent waits for the worker's
// own frame before killing it. The worker cancels its context at the budget
// itself, so a cooperative callable normally reports within the grace and
// the kill stays the backstop for the uncooperative ones.
const killGrace = 100 * time.Millisecond

// Call runs the registered function name in an isolated worker process under
// the deadline described by spec. The argument is passed by value through the
// serialization boundary, so the callable cannot mutate the caller's state.
// When the deadline passes the worker is killed and the policy formed by opts
// is applied, the same way deadline.Enforce applies it in process.
//
// Call may only be used from the primary process, calling it from inside a
// worker returns ErrUnsupportedContext.
func Call[A, R any](ctx gocontext.Context, name string, arg A, spec deadline.Spec, opts ...deadline.Option[R]) (R, error) {
	var zero R
	if ctx == nil || name == "" {
		return zero, fmt.Errorf("worker.Call requires a context and a function name: %w", errors.ErrInvalid)
	}
	if InWorker() {
		return zero, ErrUnsupportedContext
	}
	if lookup(name) == nil {
		return zero, fmt.Errorf("the function %q is not registered: %w", name, ErrNotSerializable)
	}
	d, err := deadline.Resolve(spec)
	if err != nil {
		return zero, err
	}
	argGob, err := encodeArg(name, arg)
	if err != nil {
		return zero, err
	}

	resGob, err := execWorker(ctx, name, d, argGob)
	if err != nil {
		// the expiration may come from the parent's timer or from the worker
		// reporting its own budget cancellation, both carry the same class
		if errors.Is(err, errors.ErrExceeded) {
			return deadline.NewPolicy(opts...).Expire(ctx, d)
		}
		return zero, err
	}
	return decodeResult[R](name, resGob)
}

type frameRes struct {
	f   frame
	err error
}

// execWorker re-executes the current binary as a worker child and waits for
// its frame within the deadline. The child is killed and reaped on every
// exit path.
func execWorker(ctx gocontext.Context, name string, d deadline.Deadline, argGob []byte) ([]byte, error) {
	log := logging.NewLogger("worker")
	bin, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("could not locate the current binary: %v: %w", err, errors.ErrInternal)
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("could not create the frame pipe: %v: %w", err, errors.ErrInternal)
	}
	defer pr.Close()

	runID := uuid.NewString()
	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		envFn+"="+name,
		envRun+"="+runID,
		envBudget+"="+d.Remaining().String(),
	)
	cmd.Stdin = bytes.NewReader(argGob)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{pw}

	if err = cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("could not start the worker for %q: %v: %w", name, err, errors.ErrInternal)
	}
	// the child owns the write end now, closing ours makes the reader see
	// EOF when the child dies without a frame
	pw.Close()
	log.Debugf("started the worker pid=%d for %q, remaining=%s", cmd.Process.Pid, name, d.Remaining())

	frameCh := make(chan frameRes, 1)
	go func() {
		f, ferr := readFrame(pr)
		frameCh <- frameRes{f: f, err: ferr}
	}()

	kill := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	tmr := time.NewTimer(d.Remaining() + killGrace)
	defer tmr.Stop()
	select {
	case fr := <-frameCh:
		_ = cmd.Wait()
		if fr.err != nil {
			return nil, fmt.Errorf("the worker for %q terminated without a result: %v: %w", name, fr.err, errors.ErrCommunication)
		}
		if fr.f.RunID != runID {
			return nil, fmt.Errorf("foreign frame for the run %s: %w", runID, errors.ErrInternal)
		}
		if !fr.f.Ok {
			return nil, decodeError(fr.f.Status)
		}
		return fr.f.Result, nil
	case <-tmr.C:
		log.Warnf("the worker pid=%d for %q exceeded the deadline %s, killing it", cmd.Process.Pid, name, d)
		kill()
		return nil, &deadline.ExceededError{Deadline: d}
	case <-ctx.Done():
		kill()
		return nil, ctx.Err()
	}
}
