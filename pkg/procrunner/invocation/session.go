// Copyright 2024 The voltdb-4.7fix Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package invocation implements the per-call invocation driver (spec
// §4.7), the state machine that owns a call from reset through
// teardown, plus the Session type user procedure code calls back into
// (spec §6 "To user procedure code").
package invocation

import (
	"context"
	"math/rand"
	"time"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/batch"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/descriptor"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/determinism"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/params"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
)

// Session is one in-flight stored-procedure invocation's mutable
// state (spec §3 "Invocation State"). It is created and used by
// exactly one site goroutine and never shared (spec §5 "Scheduling").
type Session struct {
	Procedure *Procedure
	Site      engine.Site
	Planner   engine.AdHocPlanner
	Plans     engine.PlanRepository
	Executor  *batch.Executor

	txn engine.TxnHandle
	rng *rand.Rand

	pending     queue.Pending
	determinism determinism.Accumulator

	appStatusCode byte
	appStatusSet  bool
	appStatusMsg  string
}

// uniqueIDTimestampShift is how many low bits of a unique ID are the
// per-partition counter; the remaining high bits are a millisecond
// timestamp (glossary "Unique ID").
const uniqueIDTimestampShift = 23

// TimestampFromUniqueID extracts the physical-clock timestamp packed
// into a unique ID's high bits.
func TimestampFromUniqueID(uid int64) time.Time {
	millis := uid >> uniqueIDTimestampShift
	return time.UnixMilli(millis)
}

// UniqueID returns the call's unique ID, or the primary's recorded
// value when this invocation is a replay (spec §4.7 "Replay /
// replicated invocations").
func (s *Session) UniqueID() int64 {
	if s.txn.Replicated() {
		return s.txn.PrimaryUniqueID()
	}
	return s.txn.UniqueID()
}

// TransactionTime returns the timestamp embedded in the call's unique
// ID (glossary "Unique ID... doubles as ... a timestamp source").
func (s *Session) TransactionTime() time.Time {
	return TimestampFromUniqueID(s.UniqueID())
}

// SeededRng returns the invocation's lazily-seeded RNG, seeded from
// the unique ID so replicas that process the same logical stream draw
// the same sequence (spec §4.7 "Cached RNG").
func (s *Session) SeededRng() engine.RNG {
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.UniqueID()))
	}
	return s.rng
}

// SetAppStatusCode sets the caller-visible application status code
// returned in the ClientResponse envelope (spec §6).
func (s *Session) SetAppStatusCode(code byte) {
	s.appStatusCode = code
	s.appStatusSet = true
}

// SetAppStatusString sets the caller-visible application status
// message.
func (s *Session) SetAppStatusString(msg string) {
	s.appStatusMsg = msg
}

// LoadTable is a thin pass-through to the site's bulk-load entry
// point (spec §6 `loadTable`, supplemented per SPEC_FULL.md).
func (s *Session) LoadTable(ctx context.Context, cluster, database, table string, data []byte, returnUniqueViolations, shouldDRStream bool) ([]byte, error) {
	return s.Site.LoadTable(ctx, cluster, database, table, data, returnUniqueViolations, shouldDRStream)
}

// QueueSQL queues a cataloged statement with no expectation (spec
// §4.3 "Queue by descriptor + args").
func (s *Session) QueueSQL(ctx context.Context, d *descriptor.Descriptor, args ...any) error {
	return s.queueDescriptor(ctx, d, nil, args)
}

// QueueSQLExpect queues a cataloged statement with an expectation
// (spec §4.3 "Queue by descriptor + expectation + args").
func (s *Session) QueueSQLExpect(ctx context.Context, d *descriptor.Descriptor, expect queue.Expectation, args ...any) error {
	return s.queueDescriptor(ctx, d, &expect, args)
}

func (s *Session) queueDescriptor(ctx context.Context, d *descriptor.Descriptor, expect *queue.Expectation, args []any) error {
	if s.Executor.SeenFinalBatch() {
		return rerr.NewDoubleFinalBatch()
	}
	if d == nil {
		return rerr.NewNullStatement()
	}
	coerced, err := params.Coerce(d.ParamTypes, args)
	if err != nil {
		return err
	}
	stmt := &queue.Statement{Descriptor: d, Params: coerced, Expectation: expect}
	if err := s.determinism.Update(ctx, stmt); err != nil {
		return rerr.NewUserAbort(err.Error())
	}
	s.pending.Append(stmt)
	return nil
}

// QueueSQLAdhoc delegates to the external ad-hoc planner and queues
// exactly one resulting statement (spec §4.3 "Queue ad-hoc SQL +
// args").
func (s *Session) QueueSQLAdhoc(ctx context.Context, sql string, args ...any) error {
	if s.Executor.SeenFinalBatch() {
		return rerr.NewDoubleFinalBatch()
	}
	plan, err := s.Planner.PlanAdHoc(ctx, sql, s.Procedure.ReadOnly)
	if err != nil {
		return rerr.NewPlannerError(err.Error())
	}
	if s.Procedure.ReadOnly && !plan.ReadOnly {
		return rerr.NewDmlFromReadOnly()
	}
	if len(plan.ExtractedParams) > 0 {
		if len(args) != 0 {
			return rerr.NewExtractedParamsConflict(len(plan.ExtractedParams), len(args))
		}
		args = plan.ExtractedParams
	}

	agg, err := s.loadFragment(ctx, plan.Aggregator, plan.AggregatorPlan)
	if err != nil {
		return err
	}
	var collector *descriptor.Fragment
	if plan.Collector != nil {
		c, err := s.loadFragment(ctx, *plan.Collector, plan.CollectorPlan)
		if err != nil {
			return err
		}
		collector = &c
	}

	d := descriptor.Synthetic(sql, plan.SQLCRC, agg, collector, plan.ParamTypes, plan.ReadOnly)
	return s.queueDescriptor(ctx, d, nil, args)
}

func (s *Session) loadFragment(ctx context.Context, f descriptor.Fragment, planBytes []byte) (descriptor.Fragment, error) {
	id, err := s.Plans.LoadOrAddRefPlanFragment(ctx, f.PlanHash, planBytes)
	if err != nil {
		return descriptor.Fragment{}, rerr.NewPlannerError(err.Error())
	}
	f.ID = id
	f.PlanBytes = planBytes
	return f, nil
}

// ExecuteSQL flushes the pending queue via the batch executor (spec
// §4.4 `execute(isFinal)`).
func (s *Session) ExecuteSQL(ctx context.Context, isFinal bool) ([]engine.Table, error) {
	return s.Executor.Execute(ctx, s.txn, &s.pending, isFinal)
}
