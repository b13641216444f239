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

// Package runner glues the enforcers, the run journal and the configuration
// together for the deadline command line tool.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/files"
	"github.com/acquirecloud/deadline/golibs/logging"
	"github.com/acquirecloud/deadline/pkg/deadline"
	"github.com/acquirecloud/deadline/pkg/journal"
	jbuntdb "github.com/acquirecloud/deadline/pkg/journal/buntdb"
	jredis "github.com/acquirecloud/deadline/pkg/journal/redis"
	"github.com/acquirecloud/deadline/pkg/worker"
	"github.com/davecgh/go-spew/spew"
	"github.com/logrange/linker"
)

type (
	// RunParams describes one command enforcement request
	RunParams struct {
		// Spec is the textual timeout spec, see deadline.Parse
		Spec string
		// Isolated selects the worker process enforcement instead of the
		// in-process one
		Isolated bool
		// Cmd is the command and its arguments
		Cmd []string
	}

	// ExecArgs crosses the worker boundary for the isolated enforcement
	ExecArgs struct {
		Path string
		Args []string
	}

	// ExecResult is what comes back from the command execution
	ExecResult struct {
		ExitCode int
	}
)

// execFnName is the worker registry name of the command executor
const execFnName = "runner.exec"

// the executor is registered at the init time, so the re-executed worker
// copies of the binary know it too
func init() {
	worker.Register(execFnName, execCommand)
}

// execCommand runs the external command, wiring the user's stdio through.
// When ctx closes the command is killed by exec.CommandContext.
func execCommand(ctx context.Context, a ExecArgs) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, a.Path, a.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if ctx.Err() != nil {
		return ExecResult{ExitCode: -1}, fmt.Errorf("the command %s was interrupted: %w", a.Path, errors.ErrExceeded)
	}
	if err != nil {
		var eerr *exec.ExitError
		if errors.As(err, &eerr) {
			return ExecResult{ExitCode: eerr.ExitCode()}, nil
		}
		return ExecResult{ExitCode: -1}, fmt.Errorf("could not run the command %s: %v: %w", a.Path, err, errors.ErrInvalid)
	}
	return ExecResult{ExitCode: 0}, nil
}

// Run enforces the deadline on the command described by p and records the
// outcome in the journal. The command exit code is returned, the expired run
// reports -1.
func Run(ctx context.Context, cfg *Config, p RunParams) (int, error) {
	log := logging.NewLogger("runner")
	log.Debugf("config: %s", spew.Sprint(cfg))

	if len(p.Cmd) == 0 {
		return -1, fmt.Errorf("the command must be specified: %w", errors.ErrInvalid)
	}
	spec, err := deadline.Parse(p.Spec)
	if err != nil {
		return -1, err
	}

	jrnl, inj, err := openJournal(ctx, cfg)
	if err != nil {
		return -1, err
	}
	defer inj.Shutdown()

	args := ExecArgs{Path: p.Cmd[0], Args: p.Cmd[1:]}
	started := time.Now()
	var res ExecResult
	if p.Isolated {
		res, err = worker.Call[ExecArgs, ExecResult](ctx, execFnName, args, spec)
	} else {
		res, err = deadline.Enforce(ctx, spec, func(ctx context.Context) (ExecResult, error) {
			return execCommand(ctx, args)
		})
	}
	elapsed := time.Since(started)

	rec := &journal.Record{
		Name:      p.Cmd[0],
		Spec:      p.Spec,
		Isolated:  p.Isolated,
		Outcome:   outcomeOf(err),
		Elapsed:   elapsed,
		StartedAt: started,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if _, serr := jrnl.SaveRecord(ctx, rec); serr != nil {
		log.Warnf("could not record the run of %s: %v", p.Cmd[0], serr)
	}

	if err != nil {
		return -1, err
	}
	log.Infof("the command %s finished with code=%d in %s", p.Cmd[0], res.ExitCode, elapsed)
	return res.ExitCode, nil
}

// History returns the recorded runs page matched by the query
func History(ctx context.Context, cfg *Config, q journal.Query) (*journal.QueryResult, error) {
	jrnl, inj, err := openJournal(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer inj.Shutdown()
	return jrnl.QueryRecords(ctx, q)
}

// Purge removes the recorded runs whose names match the pattern
func Purge(ctx context.Context, cfg *Config, namePattern string) (int64, error) {
	jrnl, inj, err := openJournal(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer inj.Shutdown()
	return jrnl.PurgeRecords(ctx, namePattern)
}

func outcomeOf(err error) journal.Outcome {
	switch {
	case err == nil:
		return journal.OutcomeCompleted
	case errors.Is(err, errors.ErrExceeded):
		return journal.OutcomeExpired
	default:
		return journal.OutcomeFailed
	}
}

// openJournal builds the configured journal backend and runs it through the
// linker lifecycle
func openJournal(ctx context.Context, cfg *Config) (journal.Journal, *linker.Injector, error) {
	jc := cfg.Journal
	if jc == nil {
		jc = getDefaultConfig().Journal
	}

	var jrnl journal.Journal
	switch jc.Backend {
	case BackendBuntDB, "":
		if jc.DBFilePath != "" {
			if err := files.EnsureDirExists(filepath.Dir(jc.DBFilePath)); err != nil {
				return nil, nil, fmt.Errorf("could not create the journal dir for %s: %w", jc.DBFilePath, err)
			}
		}
		jrnl = jbuntdb.NewJournal(jbuntdb.Config{DBFilePath: jc.DBFilePath})
	case BackendRedis:
		jrnl = jredis.NewJournal(jredis.Config{Address: jc.RedisAddress, Password: jc.RedisPassword, DB: jc.RedisDB})
	default:
		return nil, nil, fmt.Errorf("unknown journal backend %q: %w", jc.Backend, errors.ErrInvalid)
	}

	inj := linker.New()
	inj.Register(linker.Component{Name: "", Value: jrnl})
	inj.Init(ctx)
	return jrnl, inj, nil
}
