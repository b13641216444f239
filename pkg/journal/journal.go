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

// Package journal defines the run journal interfaces. Every enforced run may
// be recorded with its outcome, so the history of the deadline hits is
// queryable later.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/gobwas/glob"
)

// Outcome tells how an enforced run ended
type Outcome string

const (
	// OutcomeCompleted - the callable returned a value within the deadline
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed - the callable returned its own error within the deadline
	OutcomeFailed Outcome = "failed"
	// OutcomeExpired - the deadline passed first
	OutcomeExpired Outcome = "expired"
)

type (
	// Record describes one enforced run
	Record struct {
		// ID is the record identifier, assigned by the journal on save. The
		// IDs are ULIDs, so the natural key order is the creation order.
		ID string `json:"id"`
		// Name is the callable or command name the deadline was applied to
		Name string `json:"name"`
		// Spec is the textual form of the timeout spec used for the run
		Spec string `json:"spec"`
		// Isolated is true when the run was enforced in a worker process
		Isolated bool `json:"isolated"`
		// Outcome of the run
		Outcome Outcome `json:"outcome"`
		// Error keeps the error text for failed and expired runs
		Error string `json:"error,omitempty"`
		// Elapsed is how long the run took
		Elapsed time.Duration `json:"elapsed"`
		// StartedAt is when the run started
		StartedAt time.Time `json:"startedAt"`
	}

	// Query describes the records selection
	Query struct {
		// NamePattern is a glob over Record.Name, the empty pattern selects
		// everything
		NamePattern string
		// Page is the record ID the page starts from (inclusive)
		Page string
		// Limit bounds the page size: zero means DefaultPageSize, values
		// above MaxPageSize are capped, a negative limit is rejected with
		// ErrInvalid. See PageLimit().
		Limit int
	}

	// QueryResult is the page of records matched by a Query
	QueryResult struct {
		Records    []*Record
		NextPageID string
		Total      int64
	}

	// Journal provides access to the stored run records
	Journal interface {
		// SaveRecord persists r, assigns its ID and returns the stored record
		SaveRecord(ctx context.Context, r *Record) (*Record, error)
		// GetRecordByID returns the record by its ID or ErrNotExist
		GetRecordByID(ctx context.Context, id string) (*Record, error)
		// QueryRecords returns the records page matched by q, ordered by ID
		QueryRecords(ctx context.Context, q Query) (*QueryResult, error)
		// PurgeRecords removes the records whose names match the glob
		// pattern and returns how many were removed. The empty pattern
		// purges everything.
		PurgeRecords(ctx context.Context, namePattern string) (int64, error)
	}
)

const (
	// DefaultPageSize is the page size used when Query.Limit is zero
	DefaultPageSize = 50
	// MaxPageSize is the hard cap of one QueryRecords page
	MaxPageSize = 1000
)

// PageLimit normalizes Query.Limit per the contract above, so all the
// backends agree on the page bounds
func (q Query) PageLimit() (int, error) {
	if q.Limit < 0 {
		return 0, fmt.Errorf("the limit %d is negative: %w", q.Limit, errors.ErrInvalid)
	}
	if q.Limit == 0 {
		return DefaultPageSize, nil
	}
	return min(q.Limit, MaxPageSize), nil
}

// CompileMatch turns the NamePattern glob into a match function. The empty
// pattern matches everything.
func CompileMatch(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad name pattern %q: %v: %w", pattern, err, errors.ErrInvalid)
	}
	return g.Match, nil
}
