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

// Package descriptor holds the immutable, post-compile description of
// a single SQL statement (spec §3 "Statement Descriptor"). A
// Descriptor is built once when a procedure is installed and shared,
// never owned, by every QueuedStatement that references it.
package descriptor

import (
	"hash/crc32"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"
)

// PlanHashSize is the width of a plan fragment's content hash.
const PlanHashSize = 20

// Fragment is one stage of a statement's compiled plan. PlanBytes is
// non-nil only for a custom (ad-hoc, non-cataloged) fragment: the
// slow path submits it alongside the plan hash so a site that hasn't
// seen this plan before can still execute it (spec §4.6 "Custom
// (ad-hoc, non-cataloged) fragments").
type Fragment struct {
	ID            int64
	PlanHash      [PlanHashSize]byte
	PlanBytes     []byte
	Transactional bool
}

// Descriptor is an immutable, post-compile description of one SQL
// statement. Never mutated after Install returns it; safe to share
// across every invocation of the owning procedure.
type Descriptor struct {
	SQL                string
	Aggregator         Fragment
	Collector          *Fragment // nil for single-fragment statements
	ParamTypes         []sqltype.Code
	ReadOnly           bool
	ReplicatedTableDML bool
	sqlCRC             uint32
}

// Install builds a Descriptor for a cataloged statement, pre-computing
// the SQL-text CRC used by the determinism accumulator so that cost is
// paid once per catalog generation instead of once per invocation.
func Install(sql string, agg Fragment, collector *Fragment, paramTypes []sqltype.Code, readOnly, replicatedDML bool) *Descriptor {
	return &Descriptor{
		SQL:                sql,
		Aggregator:         agg,
		Collector:          collector,
		ParamTypes:         paramTypes,
		ReadOnly:           readOnly,
		ReplicatedTableDML: replicatedDML,
		sqlCRC:             crc32.ChecksumIEEE([]byte(sql)),
	}
}

// SQLCRC returns the pre-computed CRC32 of the statement's SQL text,
// the per-statement half of the determinism hash input (spec §4.2).
func (d *Descriptor) SQLCRC() uint32 { return d.sqlCRC }

// TwoFragment reports whether this statement has a separate collector
// fragment (multi-partition aggregation), as opposed to a single
// aggregator fragment that can run as one read.
func (d *Descriptor) TwoFragment() bool { return d.Collector != nil }

// Synthetic builds a Descriptor for an ad-hoc (non-cataloged)
// statement (spec §4.3 "Queue ad-hoc SQL + args"). sqlCRC is supplied
// by the caller because ad-hoc plans aren't compiled at install time —
// there's no catalog generation to amortize the CRC computation over,
// so the ad-hoc planner computes it once per plan and hands it here.
func Synthetic(sql string, sqlCRC uint32, agg Fragment, collector *Fragment, paramTypes []sqltype.Code, readOnly bool) *Descriptor {
	return &Descriptor{
		SQL:        sql,
		Aggregator: agg,
		Collector:  collector,
		ParamTypes: paramTypes,
		ReadOnly:   readOnly,
		sqlCRC:     sqlCRC,
	}
}
