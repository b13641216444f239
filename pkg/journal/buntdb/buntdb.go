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
package buntdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/acquirecloud/deadline/golibs/cast"
	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/logging"
	"github.com/acquirecloud/deadline/golibs/ulidutils"
	"github.com/acquirecloud/deadline/pkg/journal"
	"github.com/tidwall/buntdb"
)

type (
	// Config specifies configuration for the run journal
	// based on BuntDB https://github.com/tidwall/buntdb
	Config struct {
		// DBFilePath specifies path to the DB file
		// if empty the in-mem version is used
		DBFilePath string
	}

	// Journal is the run journal, implements the journal.Journal interface
	Journal struct {
		cfg    *Config
		db     *buntdb.DB
		logger logging.Logger
	}
)

// NewJournal creates new run journal based on BuntDB
func NewJournal(cfg Config) *Journal {
	return &Journal{cfg: &cfg}
}

// Init implements linker.Initializer
func (j *Journal) Init(ctx context.Context) error {
	path := j.cfg.DBFilePath
	if len(path) == 0 {
		path = ":memory:"
	}

	j.logger = logging.NewLogger("buntdb.Journal")
	j.logger.Infof("Initializing with dbFilePath=%s", path)

	var err error
	j.db, err = buntdb.Open(path)
	if err != nil {
		return fmt.Errorf("buntdb.Open(%s) failed: %w", path, err)
	}
	return nil
}

// Shutdown implements linker.Shutdowner
func (j *Journal) Shutdown() {
	j.logger.Infof("Shutting down...")
	if j.db != nil {
		_ = j.db.Close()
	}
}

// SaveRecord implements journal.Journal
func (j *Journal) SaveRecord(ctx context.Context, r *journal.Record) (*journal.Record, error) {
	if r == nil {
		return nil, fmt.Errorf("record must be specified: %w", errors.ErrInvalid)
	}
	rec := *r
	rec.ID = ulidutils.NewID()
	val := mustMarshal(&rec)

	tx := mustBeginTx(j.db, true)
	defer mustRollback(tx)

	if _, _, err := tx.Set(rec.ID, val, nil); err != nil {
		return nil, fmt.Errorf("tx.Set(%s, %s) failed: %w", rec.ID, val, err)
	}
	mustCommit(tx)
	return &rec, nil
}

// GetRecordByID implements journal.Journal
func (j *Journal) GetRecordByID(ctx context.Context, id string) (*journal.Record, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("id must be specified: %w", errors.ErrInvalid)
	}

	tx := mustBeginTx(j.db, false)
	defer mustRollback(tx)

	val, err := tx.Get(id, true)
	if err != nil && errors.Is(err, buntdb.ErrNotFound) {
		return nil, fmt.Errorf("record %s does not exist: %w", id, errors.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("tx.Get(%s) failed: %w", id, err)
	}
	return mustUnmarshal(val), nil
}

// QueryRecords implements journal.Journal
func (j *Journal) QueryRecords(ctx context.Context, q journal.Query) (*journal.QueryResult, error) {
	match, err := journal.CompileMatch(q.NamePattern)
	if err != nil {
		return nil, err
	}
	limit, err := q.PageLimit()
	if err != nil {
		return nil, err
	}

	var total int64
	var iterErr error
	var recs []*journal.Record
	iter := func(key, val string) bool {
		if ctx.Err() != nil {
			iterErr = fmt.Errorf("context error: %w", ctx.Err())
			return false
		}
		rec := mustUnmarshal(val)
		if !match(rec.Name) {
			return true
		}
		total++
		if len(recs) <= limit { // = for pagination
			recs = append(recs, rec)
		}
		return true
	}

	tx := mustBeginTx(j.db, false)
	defer mustRollback(tx)

	if err = tx.AscendGreaterOrEqual("", q.Page, iter); err != nil {
		return nil, fmt.Errorf("quering failed: %w", err)
	}
	if iterErr != nil {
		return nil, iterErr
	}

	var nextPageID string
	if len(recs) > limit {
		nextPageID = recs[limit].ID
		recs = recs[:limit]
	}
	return &journal.QueryResult{
		Records:    recs,
		NextPageID: nextPageID,
		Total:      total,
	}, nil
}

// PurgeRecords implements journal.Journal
func (j *Journal) PurgeRecords(ctx context.Context, namePattern string) (int64, error) {
	match, err := journal.CompileMatch(namePattern)
	if err != nil {
		return 0, err
	}

	tx := mustBeginTx(j.db, true)
	defer mustRollback(tx)

	var ids []string
	var iterErr error
	iter := func(key, val string) bool {
		if ctx.Err() != nil {
			iterErr = fmt.Errorf("context error: %w", ctx.Err())
			return false
		}
		if match(mustUnmarshal(val).Name) {
			ids = append(ids, key)
		}
		return true
	}
	if err = tx.Ascend("", iter); err != nil {
		return 0, fmt.Errorf("quering failed: %w", err)
	}
	if iterErr != nil {
		return 0, iterErr
	}

	var purged int64
	for _, id := range ids {
		if _, err = tx.Delete(id); err != nil {
			return 0, fmt.Errorf("tx.Delete(%s) failed: %w", id, err)
		}
		purged++
	}
	mustCommit(tx)
	return purged, nil
}

func mustBeginTx(db *buntdb.DB, writable bool) *buntdb.Tx {
	tx, err := db.Begin(writable)
	if err != nil {
		panic(fmt.Errorf("mustBeginTx(%t) failed: %v", writable, err))
	}
	return tx
}

func mustCommit(tx *buntdb.Tx) {
	if err := tx.Commit(); err != nil {
		panic(fmt.Errorf("mustCommit() failed: %v", err))
	}
}

func mustRollback(tx *buntdb.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, buntdb.ErrTxClosed) {
		panic(fmt.Errorf("mustRollback() failed: %v", err))
	}
}

func mustMarshal(r *journal.Record) string {
	bytes, err := json.Marshal(r)
	if err != nil {
		panic(fmt.Errorf("mustMarshal() failed: %v", err))
	}
	return cast.ByteArrayToString(bytes)
}

func mustUnmarshal(val string) *journal.Record {
	bytes := cast.StringToByteArray(val)
	r := new(journal.Record)
	if err := json.Unmarshal(bytes, r); err != nil {
		panic(fmt.Errorf("mustUnmarshal() failed: %v", err))
	}
	return r
}
