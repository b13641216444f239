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
	"os"
	"testing"
	"time"

	"github.com/acquirecloud/deadline/golibs/context"
	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/pkg/deadline"
	"github.com/stretchr/testify/assert"
)

type addArgs struct {
	A, B int
}

// the registry is shared by the test process and its re-executed worker
// copies, so the functions are registered at the package init time
func init() {
	Register("test.add", func(_ gocontext.Context, a addArgs) (int, error) {
		return a.A + a.B, nil
	})
	Register("test.sleep", func(ctx gocontext.Context, d time.Duration) (string, error) {
		if err := context.Sleep(ctx, d); err != nil {
			return "", err
		}
		return "done", nil
	})
	Register("test.block", func(_ gocontext.Context, d time.Duration) (string, error) {
		time.Sleep(d)
		return "done", nil
	})
	Register("test.fail", func(_ gocontext.Context, _ int) (int, error) {
		return 0, fmt.Errorf("no such record: %w", errors.ErrNotExist)
	})
	Register("test.badResult", func(_ gocontext.Context, _ int) (chan int, error) {
		return make(chan int), nil
	})
}

func TestMain(m *testing.M) {
	if Init() {
		return
	}
	os.Exit(m.Run())
}

func TestCallOk(t *testing.T) {
	v, err := Call[addArgs, int](gocontext.Background(), "test.add", addArgs{A: 1, B: 2}, deadline.In(5*time.Second))
	assert.Nil(t, err)
	assert.Equal(t, 3, v)
}

func TestCallCooperativeWithinBudget(t *testing.T) {
	v, err := Call[time.Duration, string](gocontext.Background(), "test.sleep", 50*time.Millisecond, deadline.In(5*time.Second))
	assert.Nil(t, err)
	assert.Equal(t, "done", v)
}

func TestCallCooperativeExpires(t *testing.T) {
	start := time.Now()
	_, err := Call[time.Duration, string](gocontext.Background(), "test.sleep", time.Minute, deadline.In(200*time.Millisecond))
	assert.True(t, errors.Is(err, errors.ErrExceeded), "got %v", err)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestCallUncooperativeKilled(t *testing.T) {
	start := time.Now()
	_, err := Call[time.Duration, string](gocontext.Background(), "test.block", time.Minute, deadline.In(200*time.Millisecond))
	assert.True(t, errors.Is(err, errors.ErrExceeded), "got %v", err)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestCallExpiryFallback(t *testing.T) {
	v, err := Call[time.Duration, string](gocontext.Background(), "test.block", time.Minute, deadline.In(200*time.Millisecond),
		deadline.OnTimeout[string](func(_ gocontext.Context) (string, error) {
			return "fallback", nil
		}))
	assert.Nil(t, err)
	assert.Equal(t, "fallback", v)
}

func TestCallExpiryCustomError(t *testing.T) {
	myErr := fmt.Errorf("too slow")
	_, err := Call[time.Duration, string](gocontext.Background(), "test.block", time.Minute, deadline.In(200*time.Millisecond),
		deadline.WithError[string](myErr))
	assert.Equal(t, myErr, err)
}

func TestCallErrorClassSurvives(t *testing.T) {
	_, err := Call[int, int](gocontext.Background(), "test.fail", 42, deadline.In(5*time.Second))
	assert.True(t, errors.Is(err, errors.ErrNotExist), "got %v", err)
	assert.Contains(t, err.Error(), "no such record")
}

func TestCallResultNotSerializable(t *testing.T) {
	_, err := Call[int, chan int](gocontext.Background(), "test.badResult", 1, deadline.In(5*time.Second))
	assert.True(t, errors.Is(err, ErrResultNotSerializable), "got %v", err)
}

func TestCallNotRegistered(t *testing.T) {
	_, err := Call[int, int](gocontext.Background(), "test.unknown", 1, deadline.In(time.Second))
	assert.True(t, errors.Is(err, ErrNotSerializable), "got %v", err)
}

func TestCallBadArg(t *testing.T) {
	// a channel argument cannot be gob-encoded, the error is reported before
	// any worker is started
	Register("test.badArg", func(_ gocontext.Context, _ chan int) (int, error) { return 0, nil })
	start := time.Now()
	_, err := Call[chan int, int](gocontext.Background(), "test.badArg", make(chan int), deadline.In(time.Second))
	assert.True(t, errors.Is(err, ErrNotSerializable), "got %v", err)
	assert.True(t, time.Since(start) < 500*time.Millisecond)
}

func TestCallFromWorkerRefused(t *testing.T) {
	t.Setenv(envFn, "test.add")
	_, err := Call[addArgs, int](gocontext.Background(), "test.add", addArgs{}, deadline.In(time.Second))
	assert.True(t, errors.Is(err, ErrUnsupportedContext), "got %v", err)
}

func TestCallBadSpec(t *testing.T) {
	_, err := Call[addArgs, int](gocontext.Background(), "test.add", addArgs{}, deadline.In(-time.Second))
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalid), "got %v", err)
}

func TestCallParentCancel(t *testing.T) {
	ctx, cancel := gocontext.WithCancel(gocontext.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := Call[time.Duration, string](ctx, "test.block", time.Minute, deadline.In(30*time.Second))
	assert.Equal(t, gocontext.Canceled, err)
	assert.True(t, time.Since(start) < 10*time.Second)
}
