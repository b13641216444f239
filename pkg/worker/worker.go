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
	gocontext "context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/acquirecloud/deadline/golibs/context"
	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/logging"
)

const (
	envFn     = "DEADLINE_WORKER_FN"
	envRun    = "DEADLINE_WORKER_RUN"
	envBudget = "DEADLINE_WORKER_BUDGET"

	// frameFd is the file descriptor the worker writes its frame to. Stdout
	// and stderr stay with the callable, so a dedicated pipe is passed as the
	// first extra file of the child.
	frameFd = 3
)

// InWorker reports whether the current process is a worker copy of the binary
func InWorker() bool {
	return os.Getenv(envFn) != ""
}

// Init must be the first call of main(). In the primary process it does
// nothing and returns false. In a worker copy of the binary it runs the
// requested callable, reports the outcome to the parent and exits, never
// returning control to main().
func Init() bool {
	if !InWorker() {
		return false
	}
	os.Exit(serve())
	return true
}

func serve() int {
	log := logging.NewLogger("worker")
	name := os.Getenv(envFn)
	runID := os.Getenv(envRun)

	out := os.NewFile(frameFd, "frame")
	if out == nil {
		log.Errorf("no frame pipe on fd %d, the worker was not started by a deadline parent", frameFd)
		return 2
	}
	defer out.Close()

	report := func(f frame) int {
		if err := writeFrame(out, f); err != nil {
			log.Errorf("could not report the outcome of %q: %v", name, err)
			return 2
		}
		return 0
	}
	fail := func(err error) int {
		return report(frame{RunID: runID, Ok: false, Status: encodeError(err)})
	}

	h := lookup(name)
	if h == nil {
		return fail(fmt.Errorf("the function %q is not registered in the worker binary: %w", name, ErrNotSerializable))
	}

	budget, err := time.ParseDuration(os.Getenv(envBudget))
	if err != nil || budget < 0 {
		return fail(fmt.Errorf("bad worker budget %q: %w", os.Getenv(envBudget), errors.ErrInvalid))
	}

	argGob, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fail(fmt.Errorf("could not read the argument of %q: %v: %w", name, err, errors.ErrCommunication))
	}

	// the worker enforces the budget on its own as well, so a cooperative
	// callable may stop in time even if the parent's kill is late
	ctx, cancel := gocontext.WithTimeout(context.NewSignalsContext(syscall.SIGTERM, syscall.SIGINT), budget)
	defer cancel()

	log.Debugf("running %q with the budget %s", name, budget)
	res, err := h.call(ctx, argGob)
	if err != nil {
		return fail(normalizeErr(ctx, err))
	}
	return report(frame{RunID: runID, Ok: true, Result: res})
}

// normalizeErr maps the callable's reaction to the budget expiration onto the
// deadline class, so the parent classifies the run as expired rather than
// failed
func normalizeErr(ctx gocontext.Context, err error) error {
	if ctx.Err() != nil && (errors.Is(err, gocontext.DeadlineExceeded) || errors.Is(err, gocontext.Canceled)) {
		return fmt.Errorf("%s: %w", err.Error(), errors.ErrExceeded)
	}
	return err
}
