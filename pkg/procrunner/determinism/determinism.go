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

// Package determinism implements the per-invocation CRC32C
// accumulator that replicas compare to detect divergence (spec §4.2).
package determinism

import (
	"context"
	"hash/crc32"

	"github.com/eoneil1942/voltdb-4.7fix/internal/rlog"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"
	"go.uber.org/zap"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Accumulator maintains a running CRC32C over every write statement
// queued during one invocation. It is reset at call start and is not
// safe for concurrent use — invocations are single-threaded (spec §5).
type Accumulator struct {
	sum     uint32
	touched bool
}

// Reset seeds the accumulator to zero for a new invocation.
func (a *Accumulator) Reset() {
	a.sum = 0
	a.touched = false
}

// Sum returns the current CRC32C value. Zero and untouched (no write
// statement has been queued yet) are indistinguishable by design: the
// spec only ever publishes a nonzero, touched hash (§4.2
// "Publication").
func (a *Accumulator) Sum() uint32 { return a.sum }

// Touched reports whether any write statement has updated the
// accumulator this invocation.
func (a *Accumulator) Touched() bool { return a.touched }

// Update folds one queued statement into the running CRC, unless its
// descriptor is read-only (reads never influence determinism: spec
// §4.2 "Guarantee"). For a write statement, it serializes the
// parameter set into stmt.SerializedParams if not already memoized,
// so the batch executor's dispatch path can reuse the same bytes
// instead of serializing twice.
//
// A serialization failure is logged and returned to the caller, which
// aborts the queueing call (fail-closed; DESIGN.md records why), and
// the accumulator is left unchanged.
func (a *Accumulator) Update(ctx context.Context, stmt *queue.Statement) error {
	if stmt.Descriptor.ReadOnly {
		return nil
	}

	if stmt.SerializedParams == nil {
		buf, err := sqltype.EncodeSet(stmt.Descriptor.ParamTypes, stmt.Params)
		if err != nil {
			rlog.Warn(ctx, "determinism: failed to serialize parameters for write statement",
				zap.String("sql", stmt.Descriptor.SQL), zap.Error(err))
			return err
		}
		stmt.SerializedParams = buf
	}

	a.sum = crc32.Update(a.sum, castagnoli, crcInput(stmt))
	a.touched = true
	return nil
}

// crcInput builds the exact byte sequence folded into the CRC: the
// 4-byte little-endian SQL CRC followed by the serialized parameters
// (spec §6 "Determinism hash").
func crcInput(stmt *queue.Statement) []byte {
	out := make([]byte, 4+len(stmt.SerializedParams))
	sqlCRC := stmt.Descriptor.SQLCRC()
	out[0] = byte(sqlCRC)
	out[1] = byte(sqlCRC >> 8)
	out[2] = byte(sqlCRC >> 16)
	out[3] = byte(sqlCRC >> 24)
	copy(out[4:], stmt.SerializedParams)
	return out
}
