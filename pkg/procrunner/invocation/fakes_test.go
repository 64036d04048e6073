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

package invocation

import (
	"context"
	"time"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/batch"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/runnerconfig"
)

type fakeTable struct{ rows int }

func (t fakeTable) RowCount() int { return t.rows }

type fakeTxn struct {
	txnID, spHandle, uniqueID int64
	readOnly, replicated      bool
	primaryUniqueID, primaryTxnID int64
}

func (t fakeTxn) TxnID() int64     { return t.txnID }
func (t fakeTxn) SPHandle() int64  { return t.spHandle }
func (t fakeTxn) UniqueID() int64  { return t.uniqueID }
func (t fakeTxn) IsReadOnly() bool { return t.readOnly }
func (t fakeTxn) Replicated() bool { return t.replicated }
func (t fakeTxn) PrimaryUniqueID() int64 {
	if t.primaryUniqueID != 0 {
		return t.primaryUniqueID
	}
	return t.uniqueID
}
func (t fakeTxn) PrimaryTxnID() int64 {
	if t.primaryTxnID != 0 {
		return t.primaryTxnID
	}
	return t.txnID
}

type fakeSite struct {
	published       []string
	batches         []int32
	partitionID     int32
	hashResult      int32
	hashErr         error
}

func (s *fakeSite) ExecutePlanFragments(ctx context.Context, req engine.FastPathRequest) ([]engine.Table, error) {
	out := make([]engine.Table, len(req.FragmentIDs))
	for i := range out {
		out[i] = fakeTable{rows: 1}
	}
	return out, nil
}
func (s *fakeSite) SetupTransaction(ctx context.Context, txn engine.TxnHandle) {}
func (s *fakeSite) SetProcedureName(name string)                              { s.published = append(s.published, name) }
func (s *fakeSite) SetBatch(index int32)                                      { s.batches = append(s.batches, index) }
func (s *fakeSite) LoadTable(ctx context.Context, cluster, database, table string, data []byte, returnUniqueViolations, shouldDRStream bool) ([]byte, error) {
	return []byte("violations"), nil
}
func (s *fakeSite) PartitionID() int32 { return s.partitionID }
func (s *fakeSite) HashPartitioningValue(ctx context.Context, legacyHashinator bool, value any) (int32, error) {
	return s.hashResult, s.hashErr
}

type fakeCoordinator struct{}

func (fakeCoordinator) RegisterDependencies(ctx context.Context, txn engine.TxnHandle, depIDs []int32) error {
	return nil
}
func (fakeCoordinator) RecursableRun(ctx context.Context, txn engine.TxnHandle, req engine.SlowPathRequest) (map[int32]engine.Table, error) {
	out := make(map[int32]engine.Table, len(req.DepsToResume))
	for _, d := range req.DepsToResume {
		out[d] = fakeTable{rows: 1}
	}
	return out, nil
}

type fakePlanner struct {
	result engine.AdHocResult
	err    error
}

func (p fakePlanner) PlanAdHoc(ctx context.Context, sql string, isReadOnlyProc bool) (engine.AdHocResult, error) {
	return p.result, p.err
}

type fakePlans struct{}

func (fakePlans) LoadOrAddRefPlanFragment(ctx context.Context, hash [20]byte, planBytes []byte) (int64, error) {
	return 1, nil
}

type fakeStats struct {
	calls []statCall
}

type statCall struct {
	proc      string
	succeeded bool
	micros    int64
}

func (f *fakeStats) RecordInvocation(procedureName string, succeeded bool, elapsedMicros int64) {
	f.calls = append(f.calls, statCall{procedureName, succeeded, elapsedMicros})
}

type fakeClock struct{ t int64 }

func (c *fakeClock) Now() time.Time {
	c.t++
	return time.UnixMilli(c.t)
}

func newTestExecutor(site *fakeSite, coord engine.Coordinator, singlePartition bool) *batch.Executor {
	e := &batch.Executor{
		Site:            site,
		Coordinator:     coord,
		Tunables:        runnerconfig.Defaults(),
		SinglePartition: singlePartition,
		ProcedureName:   "TestProcedure",
	}
	e.Reset()
	return e
}
