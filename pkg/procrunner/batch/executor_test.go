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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/descriptor"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
	"github.com/eoneil1942/voltdb-4.7fix/runnerconfig"
)

func newExecutor(site *fakeSite, coord *fakeCoordinator, singlePartition bool) *Executor {
	e := &Executor{
		Site:            site,
		Coordinator:     coord,
		Tunables:        runnerconfig.Defaults(),
		SinglePartition: singlePartition,
		ProcedureName:   "TestProcedure",
	}
	e.Reset()
	return e
}

func readOnlyStatement() *queue.Statement {
	d := descriptor.Install("SELECT 1", descriptor.Fragment{ID: 1}, nil, nil, true, false)
	return &queue.Statement{Descriptor: d}
}

func TestExecuteSplitsOversizeBatchIntoSubBatches(t *testing.T) {
	site := &fakeSite{rowsPerCall: 1}
	e := newExecutor(site, &fakeCoordinator{}, true)

	var pending queue.Pending
	for i := 0; i < 450; i++ {
		pending.Append(readOnlyStatement())
	}

	results, err := e.Execute(context.Background(), fakeTxn{}, &pending, true)
	require.NoError(t, err)
	assert.Len(t, results, 450)
	// 200 + 200 + 50: three fast-path dispatch calls, one SetBatch per Execute call.
	assert.Equal(t, []int32{0}, site.batchesPublished)
	assert.Zero(t, pending.Len())
}

func TestExecuteRejectsQueueingAfterFinalBatch(t *testing.T) {
	e := newExecutor(&fakeSite{rowsPerCall: 1}, &fakeCoordinator{}, true)

	var pending queue.Pending
	pending.Append(readOnlyStatement())
	_, err := e.Execute(context.Background(), fakeTxn{}, &pending, true)
	require.NoError(t, err)
	assert.True(t, e.SeenFinalBatch())

	pending.Append(readOnlyStatement())
	_, err = e.Execute(context.Background(), fakeTxn{}, &pending, false)
	assert.True(t, rerr.IsCode(err, rerr.DoubleFinalBatch))
}

func TestExecuteChoosesFastPathForSinglePartitionSingleFragment(t *testing.T) {
	site := &fakeSite{rowsPerCall: 1}
	coord := &fakeCoordinator{rowsPerResult: 1}
	e := newExecutor(site, coord, true)

	var pending queue.Pending
	pending.Append(readOnlyStatement())
	_, err := e.Execute(context.Background(), fakeTxn{}, &pending, true)
	require.NoError(t, err)
	assert.NotEmpty(t, site.lastReq.FragmentIDs, "fast path must have been dispatched")
	assert.Empty(t, coord.lastReq.DepsToResume, "slow path must not have been dispatched")
}

func TestExecuteChoosesSlowPathForTwoFragmentStatement(t *testing.T) {
	site := &fakeSite{rowsPerCall: 1}
	coord := &fakeCoordinator{rowsPerResult: 1}
	e := newExecutor(site, coord, true)

	agg := descriptor.Fragment{ID: 1}
	coll := descriptor.Fragment{ID: 2}
	d := descriptor.Install("SELECT * FROM partitioned_table", agg, &coll, nil, true, false)

	var pending queue.Pending
	pending.Append(&queue.Statement{Descriptor: d})
	_, err := e.Execute(context.Background(), fakeTxn{}, &pending, true)
	require.NoError(t, err)
	assert.NotEmpty(t, coord.lastReq.DepsToResume)
}

func TestExecuteChoosesSlowPathForMultiPartitionProcedure(t *testing.T) {
	site := &fakeSite{rowsPerCall: 1}
	coord := &fakeCoordinator{rowsPerResult: 1}
	e := newExecutor(site, coord, false)

	var pending queue.Pending
	pending.Append(readOnlyStatement())
	_, err := e.Execute(context.Background(), fakeTxn{}, &pending, true)
	require.NoError(t, err)
	assert.NotEmpty(t, coord.lastReq.DepsToResume, "a multi-partition procedure always takes the slow path")
}

func TestExecuteEvaluatesExpectations(t *testing.T) {
	site := &fakeSite{rowsPerCall: 0}
	e := newExecutor(site, &fakeCoordinator{}, true)

	expect := queue.ExpectExactlyOneRow()
	d := descriptor.Install("SELECT 1", descriptor.Fragment{ID: 1}, nil, nil, true, false)
	var pending queue.Pending
	pending.Append(&queue.Statement{Descriptor: d, Expectation: &expect})

	_, err := e.Execute(context.Background(), fakeTxn{}, &pending, true)
	assert.True(t, rerr.IsCode(err, rerr.ExpectationMismatch))
}

func TestExecuteBatchIndexIncrementsPerCall(t *testing.T) {
	e := newExecutor(&fakeSite{rowsPerCall: 1}, &fakeCoordinator{}, true)
	assert.EqualValues(t, -1, e.BatchIndex())

	var p1 queue.Pending
	p1.Append(readOnlyStatement())
	_, err := e.Execute(context.Background(), fakeTxn{}, &p1, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, e.BatchIndex())

	var p2 queue.Pending
	p2.Append(readOnlyStatement())
	_, err = e.Execute(context.Background(), fakeTxn{}, &p2, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.BatchIndex())
}
