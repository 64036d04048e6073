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

// Package engine declares every external collaborator the runner
// depends on but does not implement (spec §1 "Out of scope", §6
// "External Interfaces"): the site execution context, the
// distributed-fragment coordinator, the ad-hoc planner, and the
// process-wide plan repository. Production wires these to the real
// engine; tests wire them to fakes.
package engine

import (
	"context"

	"github.com/RoaringBitmap/roaring"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/descriptor"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"
)

// Table is an opaque result table: the runner never interprets its
// contents, only counts rows and forwards it.
type Table interface {
	RowCount() int
}

// TxnHandle is the transaction coordinator's handle for one
// in-flight call, immutable for the life of the invocation (spec §3).
type TxnHandle interface {
	TxnID() int64
	SPHandle() int64
	UniqueID() int64
	IsReadOnly() bool
	// Replicated reports whether this invocation is a replay of a
	// primary's execution (spec §4.7 "Replay / replicated invocations").
	Replicated() bool
	// PrimaryUniqueID and PrimaryTxnID are the values a replicated
	// replay must report instead of its own, so every replica's
	// user-visible clock/ID reads agree (spec §4.7).
	PrimaryUniqueID() int64
	PrimaryTxnID() int64
}

// ParamPayload is one statement's worth of fast-path parameters: a
// write statement carries its memoized serialized bytes, a read
// statement carries its raw coerced values (spec §4.5 "using memoized
// serialized params for writes, raw parameter sets for reads").
type ParamPayload struct {
	Serialized []byte
	Values     []any
}

// FastPathRequest packs one fast-path dispatch (spec §4.5).
type FastPathRequest struct {
	FragmentIDs []int64
	Params      []ParamPayload
	TxnID       int64
	SPHandle    int64
	UniqueID    int64
	ReadOnly    bool
}

// LocalFragmentEntry is one statement's worth of work for the local
// (aggregation) half of a slow-path dispatch (spec §4.6 "Local message").
type LocalFragmentEntry struct {
	PlanHash      [20]byte
	PlanBytes     []byte // non-nil only for ad-hoc (non-cataloged) fragments
	OutputDepID   int32
	InputDepIDs   []int32
	Transactional bool
}

// ReplicatedReads is the "array of replicated-read flags" of the slow
// path's ephemeral batch state, one bit per statement position in the
// distributed message. A roaring bitmap suits it: a sub-batch is
// mostly writes with a sparse handful of replicated reads scattered
// through it.
type ReplicatedReads = roaring.Bitmap

// DistributedFragmentEntry is one statement's worth of work for the
// distributed (collector/read) half of a slow-path dispatch (spec §4.6
// "Distributed message").
type DistributedFragmentEntry struct {
	PlanHash         [20]byte
	PlanBytes        []byte
	OutputDepID      int32
	IsReplicatedRead bool
}

// SlowPathRequest packs one slow-path dispatch (spec §4.6 "Drive").
// ReplicatedReads is installed alongside Distributed so the coordinator
// can schedule each flagged position on a single site without having
// to re-derive it from DistributedFragmentEntry.IsReplicatedRead.
type SlowPathRequest struct {
	DepsToResume                  []int32
	Local                         []LocalFragmentEntry
	Distributed                   []DistributedFragmentEntry
	ReplicatedReads               *ReplicatedReads
	LocalFragsAreNonTransactional bool
	FinalSubBatch                 bool
}

// Site is the per-site execution context the runner dispatches into
// (spec §1 "site execution context", §6 "To site/coordinator").
type Site interface {
	// ExecutePlanFragments is the fast path's single engine call.
	ExecutePlanFragments(ctx context.Context, req FastPathRequest) ([]Table, error)

	// SetupTransaction installs the per-call transaction handle.
	SetupTransaction(ctx context.Context, txn TxnHandle)

	// SetProcedureName publishes the in-flight procedure name for
	// diagnostics; called at reset and cleared at teardown.
	SetProcedureName(name string)

	// SetBatch publishes the current batch index for progress
	// reporting (spec §4.7 "Publication").
	SetBatch(index int32)

	// LoadTable is the bulk-load entry point (spec §6, supplemented
	// from original_source per SPEC_FULL.md). Returns a non-nil
	// violation buffer when returnUniqueViolations is set and at
	// least one row violated a constraint.
	LoadTable(ctx context.Context, cluster, database, table string, data []byte, returnUniqueViolations, shouldDRStream bool) ([]byte, error)

	// PartitionID returns the partition this site currently owns, used
	// by the partition check (spec §4.8).
	PartitionID() int32

	// HashPartitioningValue hashes a partitioning-column value to a
	// partition ID using the currently installed hashinator.
	HashPartitioningValue(ctx context.Context, legacyHashinator bool, value any) (int32, error)
}

// Coordinator drives the multi-partition slow path (spec §6
// "recursableRun(txnState)").
type Coordinator interface {
	// RegisterDependencies tells the coordinator which dependency IDs
	// this invocation is about to wait on.
	RegisterDependencies(ctx context.Context, txn TxnHandle, depIDs []int32) error

	// RecursableRun installs the local and distributed fragment work
	// and suspends the calling goroutine until every ID in
	// req.DepsToResume has been collected (spec §4.6 "Drive", §5
	// "Suspension points"). Returns exactly one result table per
	// dependency ID in req.DepsToResume, keyed by that ID.
	RecursableRun(ctx context.Context, txn TxnHandle, req SlowPathRequest) (map[int32]Table, error)
}

// PlanRepository is the process-wide, ref-counted plan-fragment store
// (spec §5 "Shared resources"). The runner's only entry point into it
// is ad-hoc statement queueing (spec §4.3).
type PlanRepository interface {
	// LoadOrAddRefPlanFragment loads (or ref-counts an existing) plan
	// fragment by hash, optionally submitting raw plan bytes for
	// custom (ad-hoc) fragments not already present (spec §4.6
	// "Custom (ad-hoc, non-cataloged) fragments").
	LoadOrAddRefPlanFragment(ctx context.Context, hash [20]byte, planBytes []byte) (int64, error)
}

// AdHocResult is what the external ad-hoc planner returns for one
// queueSqlAdhoc call (spec §4.3).
type AdHocResult struct {
	Aggregator      descriptor.Fragment
	AggregatorPlan  []byte // raw plan bytes, submitted via the custom-fragment path
	Collector       *descriptor.Fragment
	CollectorPlan   []byte
	ParamTypes      []sqltype.Code
	ReadOnly        bool
	ExtractedParams []any // constants the planner pulled out of the SQL text, if any
	SQLCRC          uint32
}

// AdHocPlanner is the external SQL planner/compiler the runner
// delegates ad-hoc statement planning to (spec §1 "Out of scope").
type AdHocPlanner interface {
	// PlanAdHoc compiles sql and returns exactly one planned statement
	// batch entry, or an error the caller wraps as PlannerError.
	PlanAdHoc(ctx context.Context, sql string, isReadOnlyProc bool) (AdHocResult, error)
}

// StatsSink is the write-only, per-runner stats counter an external
// stats agent reads (spec §5 "Shared resources", supplemented from
// original_source per SPEC_FULL.md).
type StatsSink interface {
	RecordInvocation(procedureName string, succeeded bool, elapsedMicros int64)
}

// RNG is the cached, seeded random source handed back from
// seededRng() (spec §4.7 "Cached RNG").
type RNG interface {
	Int63() int64
	Float64() float64
}
