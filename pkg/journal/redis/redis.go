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
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/acquirecloud/deadline/golibs/cast"
	"github.com/acquirecloud/deadline/golibs/errors"
	"github.com/acquirecloud/deadline/golibs/logging"
	"github.com/acquirecloud/deadline/golibs/ulidutils"
	"github.com/acquirecloud/deadline/pkg/journal"
	"github.com/go-redis/redis/v8"
)

type (
	// Config specifies configuration for the run journal kept in Redis
	Config struct {
		// Address is the Redis server address host:port
		Address string
		// Password, if the server requires one
		Password string
		// DB is the Redis database number
		DB int
	}

	// Journal is the run journal, implements the journal.Journal interface
	Journal struct {
		cfg    *Config
		rdb    *redis.Client
		logger logging.Logger
	}
)

const (
	keyPrefix = "/journal/"
	scanBatch = 1000
)

// NewJournal creates new run journal on the Redis server described by cfg
func NewJournal(cfg Config) *Journal {
	return &Journal{cfg: &cfg}
}

// Init implements linker.Initializer
func (j *Journal) Init(ctx context.Context) error {
	j.logger = logging.NewLogger("redis.Journal")
	j.logger.Infof("Initializing with address=%s db=%d", j.cfg.Address, j.cfg.DB)

	j.rdb = redis.NewClient(&redis.Options{Addr: j.cfg.Address, Password: j.cfg.Password, DB: j.cfg.DB})
	if err := j.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not reach redis at %s: %v: %w", j.cfg.Address, err, errors.ErrCommunication)
	}
	return nil
}

// Shutdown implements linker.Shutdowner
func (j *Journal) Shutdown() {
	j.logger.Infof("Shutting down...")
	if j.rdb != nil {
		_ = j.rdb.Close()
	}
}

// SaveRecord implements journal.Journal
func (j *Journal) SaveRecord(ctx context.Context, r *journal.Record) (*journal.Record, error) {
	if r == nil {
		return nil, fmt.Errorf("record must be specified: %w", errors.ErrInvalid)
	}
	rec := *r
	rec.ID = ulidutils.NewID()
	ok, err := j.rdb.SetNX(ctx, rKey(rec.ID), mustMarshal(&rec), 0).Result()
	if err != nil {
		return nil, checkErr(err)
	}
	if !ok {
		return nil, errors.ErrExist
	}
	return &rec, nil
}

// GetRecordByID implements journal.Journal
func (j *Journal) GetRecordByID(ctx context.Context, id string) (*journal.Record, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("id must be specified: %w", errors.ErrInvalid)
	}
	val, err := j.rdb.Get(ctx, rKey(id)).Result()
	if err != nil {
		return nil, checkErr(err)
	}
	return mustUnmarshal(val), nil
}

// QueryRecords implements journal.Journal. Redis keeps the keys unordered,
// so the IDs are collected first and sorted to restore the ULID order before
// the page is cut.
func (j *Journal) QueryRecords(ctx context.Context, q journal.Query) (*journal.QueryResult, error) {
	match, err := journal.CompileMatch(q.NamePattern)
	if err != nil {
		return nil, err
	}
	limit, err := q.PageLimit()
	if err != nil {
		return nil, err
	}

	ids, err := j.allIDs(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	var recs []*journal.Record
	for _, id := range ids {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("context error: %w", ctx.Err())
		}
		if id < q.Page {
			continue
		}
		val, err := j.rdb.Get(ctx, rKey(id)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, checkErr(err)
		}
		rec := mustUnmarshal(val)
		if !match(rec.Name) {
			continue
		}
		total++
		if len(recs) <= limit { // = for pagination
			recs = append(recs, rec)
		}
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

	ids, err := j.allIDs(ctx)
	if err != nil {
		return 0, err
	}

	var purged int64
	for _, id := range ids {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("context error: %w", ctx.Err())
		}
		val, err := j.rdb.Get(ctx, rKey(id)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return 0, checkErr(err)
		}
		if !match(mustUnmarshal(val).Name) {
			continue
		}
		cnt, err := j.rdb.Del(ctx, rKey(id)).Result()
		if err != nil {
			return 0, checkErr(err)
		}
		purged += cnt
	}
	return purged, nil
}

func (j *Journal) allIDs(ctx context.Context) ([]string, error) {
	var ids []string
	si := j.rdb.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for si.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(si.Val(), keyPrefix))
	}
	if err := si.Err(); err != nil {
		return nil, checkErr(err)
	}
	sort.Strings(ids)
	return ids, nil
}

func checkErr(err error) error {
	if err == nil {
		return nil
	}
	if err == redis.Nil {
		return errors.ErrNotExist
	}
	return err
}

func rKey(id string) string {
	return keyPrefix + id
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
