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

package batch

import (
	"context"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
)

type fakeTable struct{ rows int }

func (t fakeTable) RowCount() int { return t.rows }

type fakeTxn struct {
	txnID, spHandle, uniqueID int64
	readOnly, replicated      bool
}

func (t fakeTxn) TxnID() int64          { return t.txnID }
func (t fakeTxn) SPHandle() int64       { return t.spHandle }
func (t fakeTxn) UniqueID() int64       { return t.uniqueID }
func (t fakeTxn) IsReadOnly() bool      { return t.readOnly }
func (t fakeTxn) Replicated() bool      { return t.replicated }
func (t fakeTxn) PrimaryUniqueID() int64 { return t.uniqueID }
func (t fakeTxn) PrimaryTxnID() int64    { return t.txnID }

// fakeSite is an engine.Site double that records the fast-path request
// it was given and returns one canned table per fragment ID.
type fakeSite struct {
	lastReq        engine.FastPathRequest
	batchesPublished []int32
	err            error
	rowsPerCall    int
}

func (s *fakeSite) ExecutePlanFragments(ctx context.Context, req engine.FastPathRequest) ([]engine.Table, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	out := make([]engine.Table, len(req.FragmentIDs))
	for i := range out {
		out[i] = fakeTable{rows: s.rowsPerCall}
	}
	return out, nil
}

func (s *fakeSite) SetupTransaction(ctx context.Context, txn engine.TxnHandle) {}
func (s *fakeSite) SetProcedureName(name string)                              {}
func (s *fakeSite) SetBatch(index int32)                                      { s.batchesPublished = append(s.batchesPublished, index) }
func (s *fakeSite) LoadTable(ctx context.Context, cluster, database, table string, data []byte, returnUniqueViolations, shouldDRStream bool) ([]byte, error) {
	return nil, nil
}
func (s *fakeSite) PartitionID() int32 { return 0 }
func (s *fakeSite) HashPartitioningValue(ctx context.Context, legacyHashinator bool, value any) (int32, error) {
	return 0, nil
}

// fakeCoordinator is an engine.Coordinator double that immediately
// "collects" one result table per requested dependency.
type fakeCoordinator struct {
	lastReq       engine.SlowPathRequest
	registerErr   error
	runErr        error
	rowsPerResult int
}

func (c *fakeCoordinator) RegisterDependencies(ctx context.Context, txn engine.TxnHandle, depIDs []int32) error {
	return c.registerErr
}

func (c *fakeCoordinator) RecursableRun(ctx context.Context, txn engine.TxnHandle, req engine.SlowPathRequest) (map[int32]engine.Table, error) {
	c.lastReq = req
	if c.runErr != nil {
		return nil, c.runErr
	}
	out := make(map[int32]engine.Table, len(req.DepsToResume))
	for _, d := range req.DepsToResume {
		out[d] = fakeTable{rows: c.rowsPerResult}
	}
	return out, nil
}
