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

package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/pkg/journal"
	"github.com/acquirecloud/deadline/pkg/worker"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if worker.Init() {
		return
	}
	os.Exit(m.Run())
}

// testConfig keeps the journal in memory, the records don't survive the test
func testConfig() *Config {
	return &Config{Journal: &JournalConfig{Backend: BackendBuntDB}}
}

func fileConfig(t *testing.T) *Config {
	return &Config{Journal: &JournalConfig{Backend: BackendBuntDB,
		DBFilePath: filepath.Join(t.TempDir(), "journal.db")}}
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := BuildConfig("")
	assert.Nil(t, err)
	assert.Equal(t, BackendBuntDB, cfg.Journal.Backend)
	assert.NotEmpty(t, cfg.Journal.DBFilePath)
}

func TestBuildConfigEnv(t *testing.T) {
	t.Setenv("DEADLINE_JOURNAL_BACKEND", "redis")
	t.Setenv("DEADLINE_JOURNAL_REDISADDRESS", "127.0.0.1:6379")
	cfg, err := BuildConfig("")
	assert.Nil(t, err)
	assert.Equal(t, BackendRedis, cfg.Journal.Backend)
	assert.Equal(t, "127.0.0.1:6379", cfg.Journal.RedisAddress)
}

func TestBuildConfigFromFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "cfg.yaml")
	assert.Nil(t, os.WriteFile(fn, []byte("journal:\n  backend: redis\n  redisAddress: \"1.2.3.4:6379\"\n"), 0o644))
	cfg, err := BuildConfig(fn)
	assert.Nil(t, err)
	assert.Equal(t, BackendRedis, cfg.Journal.Backend)
	assert.Equal(t, "1.2.3.4:6379", cfg.Journal.RedisAddress)

	_, err = BuildConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, errors.ErrNotExist))
}

func TestRunCompleted(t *testing.T) {
	code, err := Run(context.Background(), testConfig(), RunParams{Spec: "5s", Cmd: []string{"sh", "-c", "exit 0"}})
	assert.Nil(t, err)
	assert.Equal(t, 0, code)
}

func TestRunExitCode(t *testing.T) {
	// a non-zero exit is still a completed run, the command had its say
	code, err := Run(context.Background(), testConfig(), RunParams{Spec: "5s", Cmd: []string{"sh", "-c", "exit 3"}})
	assert.Nil(t, err)
	assert.Equal(t, 3, code)
}

func TestRunExpired(t *testing.T) {
	start := time.Now()
	_, err := Run(context.Background(), testConfig(), RunParams{Spec: "200ms", Cmd: []string{"sleep", "10"}})
	assert.True(t, errors.Is(err, errors.ErrExceeded), "got %v", err)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestRunIsolatedExpired(t *testing.T) {
	start := time.Now()
	_, err := Run(context.Background(), testConfig(), RunParams{Spec: "200ms", Isolated: true, Cmd: []string{"sleep", "10"}})
	assert.True(t, errors.Is(err, errors.ErrExceeded), "got %v", err)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestRunIsolatedCompleted(t *testing.T) {
	code, err := Run(context.Background(), testConfig(), RunParams{Spec: "10s", Isolated: true, Cmd: []string{"sh", "-c", "exit 0"}})
	assert.Nil(t, err)
	assert.Equal(t, 0, code)
}

func TestRunBadInput(t *testing.T) {
	_, err := Run(context.Background(), testConfig(), RunParams{Spec: "5s"})
	assert.True(t, errors.Is(err, errors.ErrInvalid))

	_, err = Run(context.Background(), testConfig(), RunParams{Spec: "not a spec", Cmd: []string{"true"}})
	assert.True(t, errors.Is(err, errors.ErrInvalid))
}

func TestHistoryAndPurge(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)

	for i := 0; i < 3; i++ {
		_, err := Run(ctx, cfg, RunParams{Spec: "5s", Cmd: []string{"sh", "-c", fmt.Sprintf("exit %d", i)}})
		assert.Nil(t, err)
	}
	_, err := Run(ctx, cfg, RunParams{Spec: "200ms", Cmd: []string{"sleep", "10"}})
	assert.True(t, errors.Is(err, errors.ErrExceeded))

	res, err := History(ctx, cfg, journal.Query{})
	assert.Nil(t, err)
	assert.Equal(t, int64(4), res.Total)

	res, err = History(ctx, cfg, journal.Query{NamePattern: "sleep"})
	assert.Nil(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, journal.OutcomeExpired, res.Records[0].Outcome)
	assert.NotEmpty(t, res.Records[0].Error)

	purged, err := Purge(ctx, cfg, "sh")
	assert.Nil(t, err)
	assert.Equal(t, int64(3), purged)

	res, err = History(ctx, cfg, journal.Query{})
	assert.Nil(t, err)
	assert.Equal(t, int64(1), res.Total)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, journal.OutcomeCompleted, outcomeOf(nil))
	assert.Equal(t, journal.OutcomeExpired, outcomeOf(fmt.Errorf("late: %w", errors.ErrExceeded)))
	assert.Equal(t, journal.OutcomeFailed, outcomeOf(fmt.Errorf("boom")))
}
