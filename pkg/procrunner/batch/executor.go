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

// Package batch implements the batch executor (spec §4.4) and its two
// dispatch strategies, the fast path (spec §4.5) and the slow path
// (spec §4.6).
package batch

import (
	"context"

	"github.com/eoneil1942/voltdb-4.7fix/internal/dtrace"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
	"github.com/eoneil1942/voltdb-4.7fix/runnerconfig"
)

// ReferenceExecutor is the HSQL-backed test-mode short circuit (spec
// §4.4 "An HSQL-backed test mode"): when configured, it runs each
// statement directly against an embedded SQL reference implementation
// instead of dispatching through fast/slow path at all.
type ReferenceExecutor interface {
	ExecuteDirect(ctx context.Context, sql string, params []any) (engine.Table, error)
}

// Executor flushes the pending queue in bounded sub-batches, choosing
// fast or slow path per sub-batch, and owns the batchIndex/
// seenFinalBatch state the rules in spec §4.4 are stated in terms of.
type Executor struct {
	Site        engine.Site
	Coordinator engine.Coordinator
	Tunables    runnerconfig.Tunables
	Reference   ReferenceExecutor // nil unless test mode is configured

	// SinglePartition and ProcedureName describe the owning
	// procedure; SinglePartition decides fast vs. slow path (spec §4.4
	// "Path choice") and ProcedureName labels the dispatch trace.
	SinglePartition bool
	ProcedureName   string

	batchIndex     int32
	seenFinalBatch bool
	depAlloc       *depAllocator
}

// Reset clears per-invocation state; called by the invocation driver
// at call start (spec §4.7 step 1).
func (e *Executor) Reset() {
	e.batchIndex = -1
	e.seenFinalBatch = false
	e.depAlloc = newDepAllocator(e.Tunables.AggDepID, e.Tunables.MultipartitionFlag)
}

// BatchIndex returns the zero-based index of the most recent Execute
// call this invocation (-1 before the first call), the value published
// to the site via SetBatch for progress reporting.
func (e *Executor) BatchIndex() int32 { return e.batchIndex }

// SeenFinalBatch reports whether a final batch has already been
// executed this invocation (spec §3 invariant: "Once seenFinalBatch
// is true, queueing or further execution is a usage error").
func (e *Executor) SeenFinalBatch() bool { return e.seenFinalBatch }

// Execute flushes pending, returning an ordered array of result
// tables aligned to queueing order (spec §4.4). The queue is always
// cleared on exit, success or failure.
func (e *Executor) Execute(ctx context.Context, txn engine.TxnHandle, pending *queue.Pending, isFinal bool) ([]engine.Table, error) {
	defer pending.Clear()

	if e.seenFinalBatch {
		return nil, rerr.NewDoubleFinalBatch()
	}
	e.seenFinalBatch = isFinal
	e.batchIndex++
	e.Site.SetBatch(e.batchIndex)

	total := pending.Len()
	results := make([]engine.Table, 0, total)
	for pending.Len() > 0 {
		size := e.Tunables.MaxBatchSize
		if size > pending.Len() {
			size = pending.Len()
		}
		sub := pending.DrainPrefix(size)
		finalSubBatch := isFinal && pending.Len() == 0

		subResults, err := e.dispatch(ctx, txn, sub, finalSubBatch)
		if err != nil {
			return nil, err
		}
		if err := evaluateExpectations(sub, subResults); err != nil {
			return nil, err
		}
		results = append(results, subResults...)
	}
	return results, nil
}

func (e *Executor) dispatch(ctx context.Context, txn engine.TxnHandle, sub []*queue.Statement, finalSubBatch bool) ([]engine.Table, error) {
	if e.Reference != nil {
		return e.dispatchReference(ctx, sub)
	}
	if e.fastPathEligible(sub) {
		dtrace.Dispatch(e.ProcedureName, "fast", e.batchIndex, len(sub))
		return runFastPath(ctx, e.Site, sub, txn)
	}
	dtrace.Dispatch(e.ProcedureName, "slow", e.batchIndex, len(sub))
	return runSlowPath(ctx, e.Coordinator, sub, txn, e.depAlloc, finalSubBatch)
}

func (e *Executor) dispatchReference(ctx context.Context, sub []*queue.Statement) ([]engine.Table, error) {
	out := make([]engine.Table, len(sub))
	for i, stmt := range sub {
		t, err := e.Reference.ExecuteDirect(ctx, stmt.Descriptor.SQL, stmt.Params)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// fastPathEligible implements spec §4.4 "Path choice": fast path only
// if the procedure is single-partition and every statement in this
// sub-batch is single-fragment.
func (e *Executor) fastPathEligible(sub []*queue.Statement) bool {
	if !e.SinglePartition {
		return false
	}
	for _, stmt := range sub {
		if stmt.Descriptor.TwoFragment() {
			return false
		}
	}
	return true
}

func evaluateExpectations(sub []*queue.Statement, results []engine.Table) error {
	for i, stmt := range sub {
		if stmt.Expectation == nil {
			continue
		}
		rows := results[i].RowCount()
		if !stmt.Expectation.Evaluate(rows) {
			return rerr.NewExpectationMismatch(i, stmt.Expectation.String(), rows)
		}
	}
	return nil
}
