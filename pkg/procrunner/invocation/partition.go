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

	"github.com/eoneil1942/voltdb-4.7fix/internal/rlog"
	"go.uber.org/zap"
)

// CheckPartition implements spec §4.8: for a single-partition
// procedure on a non-legacy hashinator, extract the partitioning
// parameter, hash it, and compare to the site's currently assigned
// partition. Returns false when the check fails or cannot be
// performed cleanly, which tells the caller to restart the
// transaction rather than run it against the wrong partition.
//
// isAdHocSP is true only for an ad-hoc single-partition call, where
// the partitioning value lives in args[0] and args[1] carries its
// type tag rather than at the procedure's declared PartitionColumn.
func (s *Session) CheckPartition(ctx context.Context, args []any, isAdHocSP, legacyHashinator bool) bool {
	if !s.Procedure.SinglePartition || legacyHashinator {
		// Multi-partition or legacy hashinator: no check is
		// performed (spec §9 open question: this is a workaround
		// carried over from the source, not necessarily desired in a
		// rewrite that drops legacy support).
		return true
	}

	var value any
	if isAdHocSP {
		if len(args) < 1 {
			rlog.Warn(ctx, "partition check: ad-hoc single-partition call missing partitioning argument")
			return false
		}
		value = args[0]
	} else {
		if s.Procedure.PartitionColumn < 0 || s.Procedure.PartitionColumn >= len(args) {
			rlog.Warn(ctx, "partition check: declared partition column out of range",
				zap.Int("column", s.Procedure.PartitionColumn), zap.Int("argc", len(args)))
			return false
		}
		value = args[s.Procedure.PartitionColumn]
	}

	partitionID, err := s.Site.HashPartitioningValue(ctx, legacyHashinator, value)
	if err != nil {
		rlog.Warn(ctx, "partition check: hashing failed", zap.Error(err))
		return false
	}
	return partitionID == s.Site.PartitionID()
}
