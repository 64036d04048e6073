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
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
)

// runFastPath packs sub into one engine call: parallel arrays of
// aggregator fragment IDs and parameter values, memoized serialized
// params for writes, raw param sets for reads (spec §4.5).
func runFastPath(ctx context.Context, site engine.Site, sub []*queue.Statement, txn engine.TxnHandle) ([]engine.Table, error) {
	req := engine.FastPathRequest{
		FragmentIDs: make([]int64, len(sub)),
		Params:      make([]engine.ParamPayload, len(sub)),
		TxnID:       txn.TxnID(),
		SPHandle:    txn.SPHandle(),
		UniqueID:    txn.UniqueID(),
		ReadOnly:    txn.IsReadOnly(),
	}
	for i, stmt := range sub {
		req.FragmentIDs[i] = stmt.Descriptor.Aggregator.ID
		if stmt.Descriptor.ReadOnly {
			req.Params[i] = engine.ParamPayload{Values: stmt.Params}
		} else {
			req.Params[i] = engine.ParamPayload{Serialized: stmt.SerializedParams}
		}
	}
	return site.ExecutePlanFragments(ctx, req)
}
