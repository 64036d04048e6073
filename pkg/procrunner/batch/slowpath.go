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
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/eoneil1942/voltdb-4.7fix/internal/rlog"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"go.uber.org/zap"
)

// depAllocator hands out monotonically increasing dependency IDs for
// the lifetime of one transaction, OR-ing in the multipartition flag
// for intermediate collector outputs (spec §4.6, §6 "Configuration
// constants").
type depAllocator struct {
	next               int32
	reservedAggDepID   int32
	multipartitionFlag int32
}

func newDepAllocator(aggDepID, multipartitionFlag int32) *depAllocator {
	return &depAllocator{next: aggDepID + 1, reservedAggDepID: aggDepID, multipartitionFlag: multipartitionFlag}
}

func (a *depAllocator) allocResume() int32 {
	id := a.next
	a.next++
	if id == a.reservedAggDepID {
		id = a.next
		a.next++
	}
	return id
}

func (a *depAllocator) allocIntermediate() int32 {
	return a.allocResume() | a.multipartitionFlag
}

// runSlowPath builds the local and distributed fragment messages for
// sub, drives the coordinator's dependency-collection loop, and
// returns one result table per statement in sub's order (spec §4.6).
func runSlowPath(ctx context.Context, coord engine.Coordinator, sub []*queue.Statement, txn engine.TxnHandle, alloc *depAllocator, finalSubBatch bool) ([]engine.Table, error) {
	req := engine.SlowPathRequest{
		DepsToResume:  make([]int32, len(sub)),
		Distributed:   make([]engine.DistributedFragmentEntry, len(sub)),
		FinalSubBatch: finalSubBatch,
	}
	store := newDepstore()
	replicatedReads := roaring.New()
	localNonTransactional := true

	for i, stmt := range sub {
		d := alloc.allocResume()
		req.DepsToResume[i] = d
		store.put(d, i)

		if !stmt.Descriptor.TwoFragment() {
			req.Distributed[i] = engine.DistributedFragmentEntry{
				PlanHash:         stmt.Descriptor.Aggregator.PlanHash,
				PlanBytes:        stmt.Descriptor.Aggregator.PlanBytes,
				OutputDepID:      d,
				IsReplicatedRead: true,
			}
			replicatedReads.Add(uint32(i))
			continue
		}

		o := alloc.allocIntermediate()
		req.Distributed[i] = engine.DistributedFragmentEntry{
			PlanHash:    stmt.Descriptor.Collector.PlanHash,
			PlanBytes:   stmt.Descriptor.Collector.PlanBytes,
			OutputDepID: o,
		}
		req.Local = append(req.Local, engine.LocalFragmentEntry{
			PlanHash:      stmt.Descriptor.Aggregator.PlanHash,
			PlanBytes:     stmt.Descriptor.Aggregator.PlanBytes,
			OutputDepID:   d,
			InputDepIDs:   []int32{o},
			Transactional: stmt.Descriptor.Aggregator.Transactional,
		})
		if stmt.Descriptor.Aggregator.Transactional {
			localNonTransactional = false
		}
	}
	req.LocalFragsAreNonTransactional = localNonTransactional && finalSubBatch
	req.ReplicatedReads = replicatedReads

	if err := coord.RegisterDependencies(ctx, txn, req.DepsToResume); err != nil {
		return nil, fmt.Errorf("registering dependencies: %w", err)
	}

	rlog.Debug(ctx, "slow path dispatch",
		zap.Int("size", len(sub)),
		zap.Int32s("depsToResume", req.DepsToResume),
		zap.Uint64("replicatedReadCount", replicatedReads.GetCardinality()))

	collected, err := coord.RecursableRun(ctx, txn, req)
	if err != nil {
		rlog.Warn(ctx, "slow path dependency collection failed",
			zap.Int32s("outstanding", store.outstanding()), zap.Error(err))
		return nil, err
	}

	results := make([]engine.Table, len(sub))
	for depID, table := range collected {
		idx, ok := store.indexOf(depID)
		if !ok {
			return nil, fmt.Errorf("slow path: unexpected dependency id %d in result set", depID)
		}
		results[idx] = table
	}
	for i, d := range req.DepsToResume {
		if results[i] == nil {
			return nil, fmt.Errorf("slow path: missing result for dependency id %d (statement %d)", d, i)
		}
	}
	return results, nil
}
